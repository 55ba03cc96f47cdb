package pack

// MySQLPack guards destructive statements passed through the mysql client
// tools. SQL is matched case-insensitively since the server accepts either.
func MySQLPack() *Pack {
	return &Pack{
		ID:          "database.mysql",
		Name:        "MySQL",
		Description: "Protects against destructive MySQL CLI operations.",
		Keywords:    []string{"mysql", "mysqladmin"},
		SafePatterns: []SafePattern{
			safePattern("mysqldump", `\bmysqldump\b[^|;&]*`, "backups are read-only"),
			safePattern("mysql_show", `(?i)\bmysql\b[^|;&]*\bshow\s`, "read-only metadata query"),
			safePattern("mysql_select", `(?i)\bmysql\b[^|;&]*\bselect\s`, "read-only query"),
		},
		DestructivePatterns: []Pattern{
			{
				Name:     "drop_database",
				Regex:    mustRegex(`(?i)\bdrop\s+database\b`),
				Severity: SeverityCritical,
				Reason:   "DROP DATABASE removes the entire database and all tables.",
			},
			{
				Name:     "drop_table",
				Regex:    mustRegex(`(?i)\bdrop\s+table\b`),
				Severity: SeverityHigh,
				Reason:   "DROP TABLE removes the table and its rows permanently.",
			},
			{
				Name:     "truncate_table",
				Regex:    mustRegex(`(?i)\btruncate\s+table\b`),
				Severity: SeverityHigh,
				Reason:   "TRUNCATE TABLE deletes all rows without a transaction log.",
			},
			{
				Name:       "delete_without_where",
				Regex:      mustRegex(`(?i)\bdelete\s+from\s+[^\s;|&]+\s*(?:;|"|'|$)`),
				Severity:   SeverityHigh,
				Reason:     "DELETE without a WHERE clause removes every row in the table.",
				Suggestion: "Add a WHERE clause, or use a transaction and verify first",
			},
			{
				Name:     "mysqladmin_drop",
				Regex:    mustRegex(`\bmysqladmin\b[^|;&]*\bdrop\b`),
				Severity: SeverityCritical,
				Reason:   "mysqladmin drop removes a database without a confirmation prompt.",
			},
		},
	}
}
