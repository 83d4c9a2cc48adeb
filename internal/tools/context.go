package tools

// resolveProject picks the project scope for a call.
// Priority: explicit argument > detected workspace project.
func resolveProject(explicit string, deps *Dependencies) string {
	if explicit != "" {
		return explicit
	}
	return deps.ProjectHint
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
