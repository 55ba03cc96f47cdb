package pack

// GitPack protects against git operations that discard committed or
// uncommitted work: hard resets, forced cleans, force pushes, and history
// expiry.
func GitPack() *Pack {
	return &Pack{
		ID:          "git",
		Name:        "Git",
		Description: "Protects against git operations that permanently discard work.",
		Keywords:    []string{"git"},
		SafePatterns: []SafePattern{
			safePattern("git_status", `\bgit\s+status\b`, "read-only status"),
			safePattern("git_log", `\bgit\s+log\b`, "read-only history"),
			safePattern("git_diff", `\bgit\s+diff\b`, "read-only diff"),
			safePattern("git_stash_list", `\bgit\s+stash\s+list\b`, "read-only stash listing"),
			safePattern("git_reset_soft", `\bgit\s+reset\s+--soft\b`, "soft reset keeps the working tree"),
			safePattern("git_clean_dry_run", `\bgit\s+clean\b[^|;&]*(?:\s-[a-zA-Z]*n\b|\s--dry-run\b)[^|;&]*`, "dry-run clean deletes nothing"),
			safePattern("git_push_force_with_lease", `\bgit\s+push\b[^|;&]*--force-with-lease\b[^|;&]*`, "lease-protected force push"),
		},
		DestructivePatterns: []Pattern{
			{
				Name:       "git_reset_hard",
				Regex:      mustRegex(`\bgit\s+reset\b[^|;&]*--hard\b`),
				Severity:   SeverityHigh,
				Reason:     "git reset --hard permanently discards uncommitted changes.",
				Suggestion: "Stash first: git stash push -m backup",
			},
			{
				Name:       "git_clean_force",
				Regex:      mustRegex(`\bgit\s+clean\b[^|;&]*\s-[a-zA-Z]*f`),
				Severity:   SeverityHigh,
				Reason:     "git clean -f deletes untracked files irreversibly.",
				Suggestion: "Preview what would be removed: git clean -n",
			},
			{
				Name:       "git_checkout_discard",
				Regex:      mustRegex(`\bgit\s+checkout\s+(?:--\s+)?\.(?:\s|$)`),
				Severity:   SeverityMedium,
				Reason:     "git checkout . overwrites local modifications in the working tree.",
				Suggestion: "Review changes with git diff before discarding",
			},
			{
				Name:       "git_push_force",
				Regex:      mustRegex(`\bgit\s+push\b[^|;&]*\s(?:--force\b|-f\b)`),
				Severity:   SeverityHigh,
				Reason:     "Force push rewrites remote history and can drop others' commits.",
				Suggestion: "Use --force-with-lease to avoid clobbering remote work",
			},
			{
				Name:     "git_branch_delete_force",
				Regex:    mustRegex(`\bgit\s+branch\s+(?:-D\b|--delete\s+--force\b)`),
				Severity: SeverityMedium,
				Reason:   "git branch -D deletes a branch even when unmerged.",
			},
			{
				Name:     "git_stash_drop",
				Regex:    mustRegex(`\bgit\s+stash\s+(?:drop|clear)\b`),
				Severity: SeverityMedium,
				Reason:   "Dropped stashes are hard to recover.",
			},
			{
				Name:     "git_reflog_expire",
				Regex:    mustRegex(`\bgit\s+reflog\s+expire\b[^|;&]*--expire`),
				Severity: SeverityHigh,
				Reason:   "Expiring the reflog removes the safety net for recovering commits.",
			},
		},
	}
}
