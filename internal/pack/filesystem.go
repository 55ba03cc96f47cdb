package pack

// FilesystemPack covers direct filesystem destruction: recursive deletes,
// raw device writes, filesystem creation, and secure erasure. The recursive
// delete and shred patterns carry a path derivation rule so a catastrophic
// target escalates the rule id and severity.
func FilesystemPack() *Pack {
	return &Pack{
		ID:          "filesystem",
		Name:        "Filesystem",
		Description: "Protects against irreversible filesystem operations.",
		Keywords:    []string{"rm", "dd", "mkfs", "shred", "truncate", "find"},
		SafePatterns: []SafePattern{
			safePattern("rm_interactive", `\brm\s+-[a-zA-Z]*i[a-zA-Z]*\b[^|;&]*`, "interactive remove prompts per file"),
			safePattern("rm_help", `\brm\s+--help\b`, "help output"),
			safePattern("find_print", `\bfind\b[^|;&]*\s-print0?\b(?:[^|;&-]|-[^de])*$`, "find without destructive actions"),
		},
		DestructivePatterns: []Pattern{
			{
				Name:       "rm_rf",
				Regex:      mustRegex(`\brm\s+[^|;&]*?-[a-zA-Z]*(?:[rR][a-zA-Z]*f|f[a-zA-Z]*[rR])[a-zA-Z]*\b[^|;&]*?\s+((?:[^-\s;|&"']|"[^"]*"|'[^']*')\S*)`),
				Severity:   SeverityHigh,
				Reason:     "rm -rf deletes recursively without confirmation.",
				Suggestion: "List the target first, or move it to a trash directory",
				Derive:     &DeriveRule{Kind: DerivePath, Capture: 1},
			},
			{
				Name:     "dd_block_device",
				Regex:    mustRegex(`\bdd\b[^|;&]*\bof=(/dev/[^\s;|&]+)`),
				Severity: SeverityCritical,
				Reason:   "dd writing to a block device destroys its contents.",
			},
			{
				Name:     "mkfs",
				Regex:    mustRegex(`\bmkfs(?:\.[a-z0-9]+)?\b`),
				Severity: SeverityCritical,
				Reason:   "mkfs formats a device, erasing the existing filesystem.",
			},
			{
				Name:       "shred",
				Regex:      mustRegex(`\bshred\b[^|;&]*?\s((?:[^-\s;|&])\S*)`),
				Severity:   SeverityMedium,
				Reason:     "shred overwrites file contents beyond recovery.",
				Derive:     &DeriveRule{Kind: DerivePath, Capture: 1},
				Suggestion: "Plain rm is recoverable from backups; shred is not",
			},
			{
				Name:     "truncate_zero",
				Regex:    mustRegex(`\btruncate\s+(?:-s\s*0|--size[= ]0)\b`),
				Severity: SeverityMedium,
				Reason:   "truncate -s 0 empties a file in place.",
			},
			{
				Name:     "find_delete",
				Regex:    mustRegex(`\bfind\b[^|;&]*\s-delete\b`),
				Severity: SeverityMedium,
				Reason:   "find -delete removes every file matching the expression.",
			},
			{
				Name:     "find_exec_rm",
				Regex:    mustRegex(`\bfind\b[^|;&]*-exec\s+rm\b`),
				Severity: SeverityMedium,
				Reason:   "find -exec rm removes every file matching the expression.",
			},
		},
	}
}
