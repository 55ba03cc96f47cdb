package pack

// GitHubPack guards destructive GitHub CLI operations: deleting repos,
// releases, and secrets, plus raw DELETE calls through gh api.
func GitHubPack() *Pack {
	return &Pack{
		ID:          "platform.github",
		Name:        "GitHub CLI",
		Description: "Protects against destructive gh operations.",
		Keywords:    []string{"gh"},
		SafePatterns: []SafePattern{
			safePattern("gh_repo_view", `\bgh\s+repo\s+view\b`, "read-only repo view"),
			safePattern("gh_pr_list", `\bgh\s+pr\s+(?:list|view|status)\b`, "read-only PR queries"),
			safePattern("gh_release_list", `\bgh\s+release\s+(?:list|view)\b`, "read-only release queries"),
		},
		DestructivePatterns: []Pattern{
			{
				Name:       "repo_delete",
				Regex:      mustRegex(`\bgh\s+repo\s+delete\b`),
				Severity:   SeverityCritical,
				Reason:     "gh repo delete permanently removes the repository and its issues.",
				Suggestion: "Archive instead: gh repo archive",
			},
			{
				Name:     "release_delete",
				Regex:    mustRegex(`\bgh\s+release\s+delete\b`),
				Severity: SeverityHigh,
				Reason:   "Deleting a release removes its assets and download links.",
			},
			{
				Name:     "secret_delete",
				Regex:    mustRegex(`\bgh\s+secret\s+(?:delete|remove)\b`),
				Severity: SeverityHigh,
				Reason:   "Deleting a secret can break CI workflows that depend on it.",
			},
			{
				Name:     "repo_archive",
				Regex:    mustRegex(`\bgh\s+repo\s+archive\b`),
				Severity: SeverityMedium,
				Reason:   "Archiving makes the repository read-only for all collaborators.",
			},
			{
				Name:     "api_delete",
				Regex:    mustRegex(`\bgh\s+api\b[^|;&]*\s(?:-X|--method)[= ]DELETE\b`),
				Severity: SeverityHigh,
				Reason:   "gh api with DELETE issues a destructive REST call.",
			},
		},
	}
}
