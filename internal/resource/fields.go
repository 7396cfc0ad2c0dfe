package resource

// ProjectFields validates a requested field list against the resource's
// select allow-list. Unknown or disallowed names are silently dropped; an
// empty result means "use the default full shape" and is returned as nil.
func ProjectFields(requested []string, res *Resource) []string {
	if len(requested) == 0 {
		return nil
	}
	out := make([]string, 0, len(requested))
	for _, f := range requested {
		if !res.HasField(f) {
			continue
		}
		if !res.AllowsSelect(f) {
			continue
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
