/*
Package cli provides command-line helpers shared by the dashgate commands.

Output Formatting:

Commands accept --output text|json|csv. Tabular results are built as a
*Table and rendered by the selected formatter:

	format, err := cli.ParseOutputFormat(flagValue)
	if err != nil {
		return err
	}
	table := &cli.Table{Headers: []string{"id", "title"}}
	table.Rows = append(table.Rows, []string{"demo1", "Demo"})
	return cli.NewFormatter(format).FormatTo(os.Stdout, table)

Progress Reporting:

Bulk imports report progress on stderr:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(int64(len(files)))
	for i, f := range files {
		if err := put(f); err != nil {
			progress.Error(err)
		}
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Errors:

ConfigError and CommandError carry context for the user; ExitCode maps an
error chain to the process exit status.

Signal Handling:

	ctx := cli.SetupSignalHandler()
	// ctx is cancelled on the first SIGINT/SIGTERM
*/
package cli
