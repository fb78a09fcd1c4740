/*
Package log provides structured logging for the Hub using zerolog.

It wraps zerolog with a single global Logger and a Config accepted by
Init (level, JSON vs. console output, destination writer). Components
don't go through named helpers here to get their own scoped logger; they
call Logger.With() directly and attach whatever fields they need once,
at construction time:

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})
	probeLog := log.Logger.With().
		Str("component", "prober").
		Str("service_name", name).
		Str("instance_id", id).
		Logger()
	probeLog.Warn().Err(err).Msg("probe failed")

Console output (JSONOutput: false) is meant for local development;
JSONOutput: true is the production setting, consumed the same way any
zerolog JSON stream is - by a log shipper or journald, not by this
package.
*/
package log
