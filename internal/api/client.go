package api

import (
	"context"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"github.com/jmagar/axon/internal/batchexecute"
	"github.com/jmagar/axon/internal/rpc"
)

// DefaultEmoji is used for notebooks created without one.
const DefaultEmoji = "📔"

// sourceTypeYouTubeVideo is the AddSources type tag for YouTube videos.
const sourceTypeYouTubeVideo = 9

// Config holds the session credentials and transport settings.
type Config struct {
	AuthToken  string
	Cookies    string
	Host       string
	UseHTTP    bool
	MaxRetries int
}

// Client handles NotebookLM API interactions.
type Client struct {
	rpc       *rpc.Client
	log       *zap.Logger
	poll      pollBackoff
	transport []batchexecute.Option
}

// New creates a new NotebookLM API client. It does not validate credentials.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		log:  zap.NewNop(),
		poll: defaultPollBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	transport := append([]batchexecute.Option{
		batchexecute.WithLogger(c.log.Named("batchexecute")),
	}, c.transport...)
	c.rpc = rpc.New(rpc.Config{
		AuthToken:  cfg.AuthToken,
		Cookies:    cfg.Cookies,
		Host:       cfg.Host,
		UseHTTP:    cfg.UseHTTP,
		MaxRetries: cfg.MaxRetries,
	}, transport...)
	return c
}

// Open creates a client for an authenticated session. The caller must Close it.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.AuthToken == "" || cfg.Cookies == "" {
		return nil, errors.WithHint(ErrMissingCredentials,
			"set NLM_AUTH_TOKEN and NLM_COOKIES, or run 'nlm auth' to populate ~/.nlm/env")
	}
	return New(cfg, opts...), nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	c.rpc.Close()
	return nil
}

// Project/Notebook operations

// GetProject fetches a notebook and its sources. A missing notebook yields
// a *NotFoundError; other service-side failures yield a *RPCError.
func (c *Client) GetProject(ctx context.Context, projectID string) (*Notebook, error) {
	resp, err := c.rpc.Do(ctx, rpc.Call{
		ID:         rpc.RPCGetProject,
		Args:       []interface{}{projectID},
		NotebookID: projectID,
	})
	if err != nil {
		return nil, classifyLookup("get project", "notebook", projectID, err)
	}
	c.log.Debug("get project response", zap.String("project_id", projectID), zap.ByteString("data", resp))

	nb, err := parseProjectResponse(resp)
	if err != nil {
		return nil, &RPCError{Op: "get project", Err: err}
	}
	if nb == nil {
		return nil, &NotFoundError{ResourceType: "notebook", ID: projectID}
	}
	return nb, nil
}

// ListRecentlyViewedProjects lists the account's notebooks in the order the
// service returns them.
func (c *Client) ListRecentlyViewedProjects(ctx context.Context) ([]*Notebook, error) {
	resp, err := c.rpc.Do(ctx, rpc.Call{
		ID:   rpc.RPCListRecentlyViewedProjects,
		Args: []interface{}{nil, 1, nil, []int{2}}, // Match web UI format: [null,1,null,[2]]
	})
	if err != nil {
		return nil, errors.Wrap(err, "list projects")
	}
	projects, err := parseProjectList(resp)
	if err != nil {
		return nil, errors.Wrap(err, "list projects")
	}
	c.log.Debug("listed projects", zap.Int("count", len(projects)))
	return projects, nil
}

// CreateProject creates a notebook. An empty emoji uses DefaultEmoji.
func (c *Client) CreateProject(ctx context.Context, title, emoji string) (*Notebook, error) {
	if emoji == "" {
		emoji = DefaultEmoji
	}
	resp, err := c.rpc.Do(ctx, rpc.Call{
		ID:   rpc.RPCCreateProject,
		Args: []interface{}{title, emoji},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create project")
	}
	nb, err := parseProjectResponse(resp)
	if err != nil {
		return nil, errors.Wrap(err, "create project")
	}
	if nb == nil {
		return nil, errors.New("create project: empty response")
	}
	if nb.Title == "" {
		nb.Title = title
	}
	c.log.Info("created notebook", zap.String("project_id", nb.ID), zap.String("title", nb.Title))
	return nb, nil
}

// Source operations

// AddSourceFromURL submits a web page or YouTube video as a source and
// returns its id without waiting for processing. Refusals by the service are
// returned as *SourceAddError or *RateLimitError.
func (c *Client) AddSourceFromURL(ctx context.Context, projectID, sourceURL string) (string, error) {
	if isYouTubeURL(sourceURL) {
		// Channel and playlist pages have no video id and go in as web pages.
		if videoID, err := extractYouTubeVideoID(sourceURL); err == nil {
			return c.AddYouTubeSource(ctx, projectID, sourceURL, videoID)
		}
	}

	return c.addSource(ctx, projectID, sourceURL, []interface{}{
		nil,
		nil,
		[]string{sourceURL},
	})
}

// AddYouTubeSource submits a YouTube video by id. sourceURL is only used in errors.
func (c *Client) AddYouTubeSource(ctx context.Context, projectID, sourceURL, videoID string) (string, error) {
	return c.addSource(ctx, projectID, sourceURL, []interface{}{
		nil,
		nil,
		videoID,
		nil,
		sourceTypeYouTubeVideo,
	})
}

func (c *Client) addSource(ctx context.Context, projectID, sourceURL string, input []interface{}) (string, error) {
	payload := []interface{}{
		[]interface{}{input},
		projectID,
	}
	if ce := c.log.Check(zap.DebugLevel, "add source payload"); ce != nil {
		ce.Write(zap.String("url", sourceURL), zap.String("payload", spew.Sdump(payload)))
	}

	resp, err := c.rpc.Do(ctx, rpc.Call{
		ID:         rpc.RPCAddSources,
		NotebookID: projectID,
		Args:       payload,
	})
	if err != nil {
		return "", classifySubmission(sourceURL, err)
	}

	sourceID, err := extractSourceID(resp)
	if err != nil {
		return "", &SourceAddError{URL: sourceURL, Reason: err.Error(), Err: err}
	}
	c.log.Debug("source queued", zap.String("url", sourceURL), zap.String("source_id", sourceID))
	return sourceID, nil
}

func isYouTubeURL(u string) bool {
	return strings.Contains(u, "youtube.com") || strings.Contains(u, "youtu.be")
}

func extractYouTubeVideoID(urlStr string) (string, error) {
	u, err := url.Parse(urlStr)
	if err != nil {
		return "", err
	}

	var id string
	switch {
	case u.Host == "youtu.be":
		id = strings.TrimPrefix(u.Path, "/")
	case strings.HasSuffix(u.Host, "youtube.com") && u.Path == "/watch":
		id = u.Query().Get("v")
	case strings.HasSuffix(u.Host, "youtube.com") && strings.HasPrefix(u.Path, "/shorts/"):
		id = strings.TrimPrefix(u.Path, "/shorts/")
	case strings.HasSuffix(u.Host, "youtube.com") && strings.HasPrefix(u.Path, "/embed/"):
		id = strings.TrimPrefix(u.Path, "/embed/")
	default:
		return "", errors.New("unsupported YouTube URL format")
	}
	if id == "" {
		return "", errors.New("missing video id")
	}
	return id, nil
}
