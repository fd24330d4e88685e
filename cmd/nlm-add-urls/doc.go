/*
nlm-add-urls adds a batch of URLs to a NotebookLM notebook.

Usage:

	echo '{"notebook":"Research","urls":["https://example.com"]}' | nlm-add-urls [flags]

The notebook field is tried as a notebook id, then as a title (ignoring
case), and a notebook with that title is created when neither matches. Every
URL is submitted in order; a URL the service rejects is reported and the rest
are still submitted. The command then waits, up to --timeout, for the added
sources to finish processing. Sources still processing at the timeout are
counted as added.

The report written to stdout:

	{"notebook_id":"...","notebook_title":"...","added":1,"failed":0,"errors":[]}

Exit status is 0 for a completed run, including runs where some URLs failed,
and 1 when the run could not complete, in which case the report is

	{"notebook_id":"","notebook_title":"","added":0,"failed":0,"errors":["Script error: ..."]}

Flags:

	--timeout duration    wait for processing (default 2m0s; bare numbers are seconds)
	--debug               debug logging on stderr
	--env-file path       credentials file (default ~/.nlm/env)
	--rate-limit n        requests per second, 0 for unlimited (default 4)
	--log-format f        console or json (default console)

Environment:

	NLM_AUTH_TOKEN      Authentication token
	NLM_COOKIES         Session cookies
	NLM_WAIT_TIMEOUT    Same as --timeout
	NLM_HOST, NLM_USE_HTTP, NLM_MAX_RETRIES, NLM_RATE_LIMIT, NLM_DEBUG, NLM_LOG_FORMAT
*/
package main
