package alerts

import "log/slog"

// ConfiguredChannels builds the external channels whose configuration is
// complete. Incomplete channels are skipped and logged once here.
func ConfiguredChannels(cfg Config, logger *slog.Logger) []Channel {
	logger = logger.With("system", "alerts")

	var channels []Channel

	if cfg.SMS.Complete() {
		channels = append(channels, NewSMS(cfg.SMS))
	} else {
		logger.Info("sms channel disabled: configuration incomplete")
	}

	if cfg.Email.Complete() {
		channels = append(channels, NewEmail(cfg.Email, cfg.TimeoutDuration()))
	} else {
		logger.Info("email channel disabled: configuration incomplete")
	}

	return channels
}
