package config

import "github.com/spf13/viper"

// Default values for configuration
const (
	DefaultLogLevel       = "info"
	DefaultDBPath         = "taskflow.db"
	DefaultSessionBackend = "memory"
	DefaultSessionPrefix  = "taskflow:session:"
	DefaultRedisAddr      = "localhost:6379"

	// SQLMaintenanceTask is the scheduler key of the VACUUM task.
	SQLMaintenanceTask     = "sql_maintenance"
	DefaultMaintenanceCron = "0 0 4 * * *"
)

// Default bot messages
var DefaultMessages = MessagesConfig{
	Welcome: "👋 Hi! I'm TaskFlow, your task reminder bot.\n\n" +
		"Manage your tasks with the ☰ menu or the buttons below!",
	Help: "/add - add a task\n" +
		"/today - tasks for today\n" +
		"/overdue - overdue tasks\n" +
		"/list - all active tasks\n" +
		"/stats - statistics\n" +
		"/task <id> - show a task and its actions\n" +
		"/cancel - cancel adding a task",
	GeneralError:  "❌ Something went wrong. Please try again.",
	NotAuthorized: "🚫 Access denied.",
	Settings:      "⚙️ Settings are under construction\n\nOnly the basic features are available for now",
}

// setDefaults sets default values for optional configuration parameters
func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.allowed_user_ids", []int64{})

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("session.backend", DefaultSessionBackend)
	v.SetDefault("session.key_prefix", DefaultSessionPrefix)
	v.SetDefault("session.ttl", "0s")
	v.SetDefault("session.redis.addr", DefaultRedisAddr)
	v.SetDefault("session.redis.password", "")
	v.SetDefault("session.redis.db", 0)

	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)

	v.SetDefault("timezone", "")

	v.SetDefault("scheduler.tasks."+SQLMaintenanceTask+".enabled", true)
	v.SetDefault("scheduler.tasks."+SQLMaintenanceTask+".schedule", DefaultMaintenanceCron)

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.help", DefaultMessages.Help)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)
	v.SetDefault("messages.not_authorized", DefaultMessages.NotAuthorized)
	v.SetDefault("messages.settings", DefaultMessages.Settings)
}
