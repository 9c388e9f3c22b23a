package deck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"deck-game-service/internal/domain"
)

// Fetcher obtains a freshly shuffled deck. The returned URL is the exact
// request URL, kept on the session for provenance.
type Fetcher interface {
	FetchDeck(ctx context.Context) (domain.Deck, string, error)
}

// Client fetches shuffled decks from the remote shuffle endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient builds a Client with a bounded request timeout; a hung shuffle
// service must fail the turn, not stall it.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// shuffleResponse is the wire shape of the shuffle endpoint.
type shuffleResponse struct {
	Lookup      map[string]wireQuestion `json:"lookup"`
	ShuffledIDs [][]string              `json:"shuffledIds"`
}

type wireQuestion struct {
	Question string `json:"question"`
}

// FetchDeck performs GET <endpoint>?s=<unix-millis> and validates the
// response before handing it to the session. The nonce defeats any
// intermediate cache so repeated starts always get a fresh shuffle.
func (c *Client) FetchDeck(ctx context.Context) (domain.Deck, string, error) {
	reqURL, err := c.shuffleURL()
	if err != nil {
		return domain.Deck{}, "", &domain.DeckFetchError{URL: c.endpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.Deck{}, reqURL, &domain.DeckFetchError{URL: reqURL, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Deck{}, reqURL, &domain.DeckFetchError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Deck{}, reqURL, &domain.DeckFetchError{URL: reqURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var body shuffleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Deck{}, reqURL, &domain.DeckFetchError{URL: reqURL, Err: fmt.Errorf("decode response: %w", err)}
	}

	deck := domain.Deck{
		Lookup: make(map[string]domain.Question, len(body.Lookup)),
		Levels: body.ShuffledIDs,
	}
	for id, q := range body.Lookup {
		deck.Lookup[id] = domain.Question{ID: id, Text: q.Question}
	}
	if err := deck.Validate(); err != nil {
		return domain.Deck{}, reqURL, &domain.DeckFetchError{URL: reqURL, Err: err}
	}
	return deck, reqURL, nil
}

func (c *Client) shuffleURL() (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("s", strconv.FormatInt(c.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
