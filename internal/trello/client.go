package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mkessler/ttr/internal/model"
)

const defaultBaseURL = "https://api.trello.com/1"

// Client is an authenticated Trello REST API client. Trello authenticates
// every request with static key/token query parameters.
type Client struct {
	baseURL    string
	key        string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates a Trello API client for the given credentials.
func NewClient(key, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		key:        key,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one API request and decodes the JSON response into out.
// Non-2xx responses become errors carrying the status and body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("key", c.key)
	query.Set("token", c.token)

	endpoint := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("trello API request failed: %w", err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("trello API error %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding trello response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Boards lists the authenticated member's open boards.
func (c *Client) Boards(ctx context.Context) ([]model.Board, error) {
	q := url.Values{}
	q.Set("filter", "open")
	q.Set("fields", "id,name,url,closed")

	var boards []model.Board
	if err := c.get(ctx, "/members/me/boards", q, &boards); err != nil {
		return nil, fmt.Errorf("fetching boards: %w", err)
	}
	return boards, nil
}

// Board fetches a single board by id or short link.
func (c *Client) Board(ctx context.Context, boardID string) (model.Board, error) {
	q := url.Values{}
	q.Set("fields", "id,name,url,closed")

	var board model.Board
	if err := c.get(ctx, "/boards/"+url.PathEscape(boardID), q, &board); err != nil {
		return model.Board{}, fmt.Errorf("fetching board %s: %w", boardID, err)
	}
	return board, nil
}

// Cards lists a board's open cards, including their Power-Up plugin data.
func (c *Client) Cards(ctx context.Context, boardID string) ([]model.Card, error) {
	q := url.Values{}
	q.Set("filter", "open")
	q.Set("pluginData", "true")
	q.Set("fields", "id,name,url,shortUrl,idBoard,idList,idMembers,labels,closed")

	var cards []model.Card
	if err := c.get(ctx, "/boards/"+url.PathEscape(boardID)+"/cards", q, &cards); err != nil {
		return nil, fmt.Errorf("fetching cards for board %s: %w", boardID, err)
	}
	return cards, nil
}

// Lists lists a board's open lists.
func (c *Client) Lists(ctx context.Context, boardID string) ([]model.List, error) {
	q := url.Values{}
	q.Set("filter", "open")
	q.Set("fields", "id,name,pos,closed")

	var lists []model.List
	if err := c.get(ctx, "/boards/"+url.PathEscape(boardID)+"/lists", q, &lists); err != nil {
		return nil, fmt.Errorf("fetching lists for board %s: %w", boardID, err)
	}
	return lists, nil
}

// Members lists a board's members.
func (c *Client) Members(ctx context.Context, boardID string) ([]model.Member, error) {
	q := url.Values{}
	q.Set("fields", "id,username,fullName")

	var members []model.Member
	if err := c.get(ctx, "/boards/"+url.PathEscape(boardID)+"/members", q, &members); err != nil {
		return nil, fmt.Errorf("fetching members for board %s: %w", boardID, err)
	}
	return members, nil
}

// Labels lists a board's labels.
func (c *Client) Labels(ctx context.Context, boardID string) ([]model.Label, error) {
	q := url.Values{}
	q.Set("fields", "id,name,color")

	var labels []model.Label
	if err := c.get(ctx, "/boards/"+url.PathEscape(boardID)+"/labels", q, &labels); err != nil {
		return nil, fmt.Errorf("fetching labels for board %s: %w", boardID, err)
	}
	return labels, nil
}

// Card fetches a single card with its plugin data.
func (c *Client) Card(ctx context.Context, cardID string) (model.Card, error) {
	q := url.Values{}
	q.Set("pluginData", "true")
	q.Set("fields", "id,name,url,shortUrl,idBoard,idList,idMembers,labels,closed")

	var card model.Card
	if err := c.get(ctx, "/cards/"+url.PathEscape(cardID), q, &card); err != nil {
		return model.Card{}, fmt.Errorf("fetching card %s: %w", cardID, err)
	}
	return card, nil
}

// Me fetches the authenticated member.
func (c *Client) Me(ctx context.Context) (model.Member, error) {
	q := url.Values{}
	q.Set("fields", "id,username,fullName")

	var me model.Member
	if err := c.get(ctx, "/members/me", q, &me); err != nil {
		return model.Member{}, fmt.Errorf("fetching authenticated member: %w", err)
	}
	return me, nil
}

// PutCardData replaces the card's shared Power-Up storage value. Writers
// read, modify, and put the whole value; concurrent writers are not
// coordinated (last write wins).
func (c *Client) PutCardData(ctx context.Context, cardID, value string) error {
	payload, err := json.Marshal(map[string]string{"value": value})
	if err != nil {
		return fmt.Errorf("encoding plugin data: %w", err)
	}
	path := "/cards/" + url.PathEscape(cardID) + "/pluginData"
	if err := c.do(ctx, http.MethodPut, path, nil, strings.NewReader(string(payload)), nil); err != nil {
		return fmt.Errorf("writing plugin data for card %s: %w", cardID, err)
	}
	return nil
}

// Snapshot fetches everything the reporting pipeline needs from a board
// in one joined batch: the board itself plus its cards, lists, members,
// and labels in parallel. Any fetch error fails the whole snapshot; the
// pipeline never runs on partial data.
func (c *Client) Snapshot(ctx context.Context, boardID string) (model.BoardSnapshot, error) {
	var snap model.BoardSnapshot
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		board, err := c.Board(egCtx, boardID)
		snap.Board = board
		return err
	})
	eg.Go(func() error {
		cards, err := c.Cards(egCtx, boardID)
		snap.Cards = cards
		return err
	})
	eg.Go(func() error {
		lists, err := c.Lists(egCtx, boardID)
		snap.Lists = lists
		return err
	})
	eg.Go(func() error {
		members, err := c.Members(egCtx, boardID)
		snap.Members = members
		return err
	})
	eg.Go(func() error {
		labels, err := c.Labels(egCtx, boardID)
		snap.Labels = labels
		return err
	})

	if err := eg.Wait(); err != nil {
		return model.BoardSnapshot{}, err
	}
	return snap, nil
}
