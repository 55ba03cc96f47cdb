package pack

// KafkaPack guards destructive Kafka CLI operations: deleting topics,
// removing consumer groups, resetting offsets, and deleting records.
func KafkaPack() *Pack {
	return &Pack{
		ID:          "messaging.kafka",
		Name:        "Apache Kafka",
		Description: "Protects against destructive Kafka CLI operations.",
		Keywords: []string{
			"kafka-topics", "kafka-consumer-groups", "kafka-configs",
			"kafka-acls", "kafka-delete-records", "rpk",
		},
		SafePatterns: []SafePattern{
			safePattern("kafka_topics_list", `kafka-topics(?:\.sh)?\b[^|;&]*\s--list\b`, "read-only topic listing"),
			safePattern("kafka_topics_describe", `kafka-topics(?:\.sh)?\b[^|;&]*\s--describe\b`, "read-only topic description"),
			safePattern("kafka_consumer_groups_list", `kafka-consumer-groups(?:\.sh)?\b[^|;&]*\s--list\b`, "read-only group listing"),
			safePattern("kafka_consumer_groups_describe", `kafka-consumer-groups(?:\.sh)?\b[^|;&]*\s--describe\b`, "read-only group description"),
			safePattern("kafka_acls_list", `kafka-acls(?:\.sh)?\b[^|;&]*\s--list\b`, "read-only ACL listing"),
			safePattern("kafka_configs_describe", `kafka-configs(?:\.sh)?\b[^|;&]*\s--describe\b`, "read-only config description"),
			safePattern("kafka_reset_offsets_dry_run", `kafka-consumer-groups(?:\.sh)?\b[^|;&]*\s--reset-offsets\b[^|;&]*\s--dry-run\b[^|;&]*`, "offset reset preview"),
		},
		DestructivePatterns: []Pattern{
			{
				Name:     "topics_delete",
				Regex:    mustRegex(`kafka-topics(?:\.sh)?\b[^|;&]*\s--delete\b`),
				Severity: SeverityHigh,
				Reason:   "kafka-topics --delete removes topics and their data.",
			},
			{
				Name:     "consumer_groups_delete",
				Regex:    mustRegex(`kafka-consumer-groups(?:\.sh)?\b[^|;&]*\s--delete\b`),
				Severity: SeverityHigh,
				Reason:   "kafka-consumer-groups --delete removes groups and committed offsets.",
			},
			{
				Name:       "reset_offsets",
				Regex:      mustRegex(`kafka-consumer-groups(?:\.sh)?\b[^|;&]*\s--reset-offsets\b`),
				Severity:   SeverityMedium,
				Reason:     "Resetting offsets rewinds consumers and can cause reprocessing.",
				Suggestion: "Run with --dry-run first to preview the new offsets",
			},
			{
				Name:     "configs_delete",
				Regex:    mustRegex(`kafka-configs(?:\.sh)?\b[^|;&]*\s--alter\b[^|;&]*\s--delete-config\b`),
				Severity: SeverityMedium,
				Reason:   "Deleting broker or topic configs reverts tuning to defaults.",
			},
			{
				Name:     "acls_remove",
				Regex:    mustRegex(`kafka-acls(?:\.sh)?\b[^|;&]*\s--remove\b`),
				Severity: SeverityHigh,
				Reason:   "Removing ACLs can break access control for producers and consumers.",
			},
			{
				Name:     "delete_records",
				Regex:    mustRegex(`kafka-delete-records(?:\.sh)?\b`),
				Severity: SeverityHigh,
				Reason:   "kafka-delete-records deletes records up to the given offsets.",
			},
			{
				Name:     "rpk_topic_delete",
				Regex:    mustRegex(`\brpk\b[^|;&]*\stopic\s+delete\b`),
				Severity: SeverityHigh,
				Reason:   "rpk topic delete removes topics and their data.",
			},
		},
	}
}
