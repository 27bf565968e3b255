package es

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/elastic/go-elasticsearch/v7/estransport"
	"github.com/fundwit/go-commons/types"
)

type H map[string]interface{}

type SearchResult struct {
	Took    int        `json:"took"`
	TimeOut bool       `json:"timed_out"`
	Hits    SearchHits `json:"hits"`
}

type SearchHits struct {
	Total    SearchHitsTotal `json:"total"`
	MaxScore float64         `json:"max_score"`
	Hits     []SearchHit     `json:"hits"`
}

type SearchHitsTotal struct {
	Value    int    `json:"value"`
	Relation string `json:"relation"`
}

type SearchHit struct {
	Index string `json:"_index"`
	Id    string `json:"_id"`

	Score  float64 `json:"_score"`
	Source Source  `json:"_source"`
}

// Source holds the raw document body without re-encoding it.
type Source string

func (d *Source) UnmarshalJSON(data []byte) error {
	*d = Source(data)
	return nil
}

func (d *Source) MarshalJSON() ([]byte, error) {
	return []byte(*d), nil
}

type ClientTraits interface {
	Index(ctx context.Context, index string, id types.ID, doc interface{}) error
	Search(ctx context.Context, index string, query H) (*SearchResult, error)
	DeleteDocumentById(ctx context.Context, index string, id types.ID) error
}

type Client struct {
	raw *elasticsearch.Client
}

// NewClientFromEnv builds a client against ELASTICSEARCH_URL with a traced
// transport.
func NewClientFromEnv() (*Client, error) {
	debug := os.Getenv("GIN_MODE") == "debug"
	conf := elasticsearch.Config{
		Logger:    &estransport.TextLogger{Output: os.Stdout, EnableRequestBody: debug, EnableResponseBody: debug},
		Transport: &TracingTransport{Transport: http.DefaultTransport},
	}
	raw, err := elasticsearch.NewClient(conf)
	if err != nil {
		return nil, err
	}
	return &Client{raw: raw}, nil
}

func (c *Client) Index(ctx context.Context, index string, id types.ID, doc interface{}) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: id.String(),
		Body:       bytes.NewReader(buf.Bytes()),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, c.raw)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.New("index document " + id.String() + " into " + index + ": " + res.Status())
	}
	return nil
}

func (c *Client) Search(ctx context.Context, index string, query H) (*SearchResult, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, err
	}

	res, err := c.raw.Search(
		c.raw.Search.WithContext(ctx),
		c.raw.Search.WithIndex(index),
		c.raw.Search.WithBody(&buf),
		c.raw.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.New("search " + index + ": " + res.Status())
	}

	result := SearchResult{}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteDocumentById(ctx context.Context, index string, id types.ID) error {
	res, err := c.raw.Delete(index, id.String())
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return errors.New("delete document " + id.String() + " from " + index + ": " + res.Status())
	}
	return nil
}
