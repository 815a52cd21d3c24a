/*
Package cli provides command-line plumbing for the relay binary: typed
command errors with sysexits-style exit codes derived from the stack's
failure taxonomy, dial-progress reporting for the benchmark command, and
two-phase signal handling for the listener's graceful drain.

Exit codes:

Command errors classify their cause so scripts can branch on the exit
code — a bad config file (78), an impossible PROXY configuration (78), a
layer timeout (75), a recovered panic (70):

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}

Dial progress:

The benchmark command records each dial outcome as it lands and gets
percentile latencies back from Finish:

	progress := cli.NewDialProgress(os.Stdout)
	progress.Begin(total)
	for range dials {
		progress.Record(latency, err)
	}
	summary := progress.Finish()
	cli.WriteReport(os.Stdout, cli.FormatText, cli.BenchmarkReport{Target: target, Summary: summary})

Signal handling:

The first SIGINT/SIGTERM cancels the returned context so the listener can
drain in-flight connections; a second signal exits immediately:

	ctx := cli.SetupSignalHandler()
*/
package cli
