// Package watch rebuilds requirement graphs when game files change and on a
// cron schedule.
//
// Three pieces cooperate in watch mode:
//
//   - FileWatcher follows the directories that collection patterns read
//     from and fires a debounced callback on relevant changes
//   - Scheduler runs the same callback on a cron expression
//   - Rebuilder runs one rebuild at a time and folds triggers that arrive
//     during a rebuild into a single follow-up run
//
// Example:
//
//	rebuilder := watch.NewRebuilder(func(ctx context.Context) error {
//		_, err := builder.Build(ctx)
//		return err
//	}, logger, collector)
//
//	fw, err := watch.NewFileWatcher(watch.FileWatcherConfig{
//		Paths:    watch.Roots(cfg.GameRoot, patterns),
//		Debounce: cfg.Watch.Debounce,
//	}, logger, collector)
//	go fw.Watch(ctx, func() { rebuilder.Trigger(ctx, watch.TriggerFileChange) })
package watch
