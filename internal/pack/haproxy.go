package pack

// HAProxyPack guards destructive HAProxy operations: stop signals, service
// shutdown, and runtime API commands issued through socat.
func HAProxyPack() *Pack {
	return &Pack{
		ID:          "loadbalancer.haproxy",
		Name:        "HAProxy",
		Description: "Protects against destructive HAProxy load balancer operations.",
		Keywords:    []string{"haproxy", "socat"},
		SafePatterns: []SafePattern{
			safePattern("haproxy_config_check", `\bhaproxy\b[^|;&]*\s-c\b`, "config syntax check"),
			safePattern("haproxy_version", `\bhaproxy\s+-v+\b`, "version info"),
			safePattern("systemctl_status", `systemctl\s+status\s+haproxy(?:\.service)?\b`, "read-only service status"),
			safePattern("service_status", `service\s+haproxy\s+status\b`, "read-only service status"),
			safePattern("socat_show", `(?:echo|printf)\s+['"]?show\s+(?:stat|info|servers|backend|sess|errors|table)\b[^|]*\|\s*socat\b`, "read-only runtime API query"),
		},
		DestructivePatterns: []Pattern{
			{
				Name:     "soft_stop",
				Regex:    mustRegex(`\bhaproxy\b[^|;&]*\s-sf\b`),
				Severity: SeverityHigh,
				Reason:   "haproxy -sf signals a soft stop, draining and terminating the load balancer.",
			},
			{
				Name:     "hard_stop",
				Regex:    mustRegex(`\bhaproxy\b[^|;&]*\s-st\b`),
				Severity: SeverityHigh,
				Reason:   "haproxy -st signals a hard stop, terminating the load balancer immediately.",
			},
			{
				Name:     "systemctl_stop",
				Regex:    mustRegex(`systemctl\s+stop\s+haproxy(?:\.service)?\b`),
				Severity: SeverityHigh,
				Reason:   "systemctl stop haproxy takes the load balancer offline.",
			},
			{
				Name:     "service_stop",
				Regex:    mustRegex(`service\s+haproxy\s+stop\b`),
				Severity: SeverityHigh,
				Reason:   "service haproxy stop takes the load balancer offline.",
			},
			{
				Name:       "socat_disable_server",
				Regex:      mustRegex(`(?:echo|printf)\s+['"]?disable\s+server\b[^|]*\|\s*socat\b`),
				Severity:   SeverityHigh,
				Reason:     "Disabling a server via the runtime API removes it from the pool.",
				Suggestion: "Drain the server first with 'set server ... state drain'",
			},
			{
				Name:     "socat_disable_frontend",
				Regex:    mustRegex(`(?:echo|printf)\s+['"]?disable\s+frontend\b[^|]*\|\s*socat\b`),
				Severity: SeverityHigh,
				Reason:   "Disabling a frontend stops it from accepting new connections.",
			},
			{
				Name:     "socat_shutdown_frontend",
				Regex:    mustRegex(`(?:echo|printf)\s+['"]?shutdown\s+frontend\b[^|]*\|\s*socat\b`),
				Severity: SeverityHigh,
				Reason:   "Shutting down a frontend via the runtime API terminates it immediately.",
			},
			{
				Name:     "socat_shutdown_sessions",
				Regex:    mustRegex(`(?:echo|printf)\s+['"]?shutdown\s+sessions?\b[^|]*\|\s*socat\b`),
				Severity: SeverityMedium,
				Reason:   "Shutting down sessions via the runtime API drops active connections.",
			},
			{
				Name:     "config_delete",
				Regex:    mustRegex(`\brm\b[^|;&]*\s/etc/haproxy(?:/|\b)`),
				Severity: SeverityHigh,
				Reason:   "Removing files under /etc/haproxy deletes the load balancer configuration.",
			},
		},
	}
}
