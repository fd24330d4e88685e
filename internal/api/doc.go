/*
Package api provides a client for the parts of the NotebookLM API needed to
ingest web sources into a notebook.

Basic usage:

	client, err := api.Open(ctx, api.Config{AuthToken: token, Cookies: cookies})
	if err != nil {
		return err
	}
	defer client.Close()

	nb, err := client.GetProject(ctx, "project-id")

	id, err := client.AddSourceFromURL(ctx, nb.ID, "https://example.com")

	err = client.WaitForSources(ctx, nb.ID, []string{id}, 2*time.Minute)

Responses are positional JSON arrays; the client decodes only the fields it
uses into Notebook and Source.
*/
package api
