/*
Package operation runs search and replace rules over a file set.

	+-------------+
	|    Jobs     |
	|  (Rules)    |
	+------+------+
	       |
	+------+------+
	|    Scan     |
	| (Rewriter)  |
	+------+------+
	       |
	+------+------+
	|   Report    |
	|  & Install  |
	+-------------+

🎯 Purpose:
- Compiles every rule before any file is touched
- Applies rules one after another to the same files
- Reports occurrences and installs rewritten files

🔄 Flow:
1. Compile turns config rules into jobs (invalid patterns abort)
2. For each job, files are narrowed by the global and per-rule globs
3. Files are scanned, concurrently when Options.Jobs > 1
4. Results are reported and installed in file order
5. Pending rewritten copies are discarded once the job is done

⚡ Guarantees:
- A job finishes all installs before the next job scans
- A failing file is reported and counted, the run carries on
- Each fixed file is announced once, after all jobs

🔍 Example:

	jobs, err := operation.Compile(cfg, time.Second)
	if err != nil {
		return err
	}
	ctx = log.NewContext(ctx, log.New(os.Stdout, zerolog.Nop()))
	outcome, err := operation.NewRunner(operation.Options{Write: true}).Run(ctx, jobs, files)
	if err != nil {
		return err
	}
	os.Exit(outcome.ExitCode())
*/
package operation
