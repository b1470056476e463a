// Package logging provides subsystem-tagged, level-filtered logging for
// systest, built on the standard slog package.
//
// Every entry carries the subsystem that produced it, so executor launches,
// dependency resolution and mount preparation can be told apart in debug
// output:
//
//	logging.Init(logging.LevelInfo, os.Stderr)
//	logging.Info("SystemTest", "Coverage data will be written to %s", dest)
//	logging.Error("Resolver", err, "failed to download %s", coord)
//
// Log output is diagnostic only. Task banners and outcomes are user output
// and are written by the report package, never through this logger.
package logging
