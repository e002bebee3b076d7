package newsapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"Newsroom-Apps/internal/core/network"
	"Newsroom-Apps/internal/metrics"
	"Newsroom-Apps/internal/news"
	"Newsroom-Apps/internal/newswire"
)

// ServerSuite drives the HTTP surface against a real publisher and an
// in-memory wire.
type ServerSuite struct {
	suite.Suite
	transport *network.MemoryPubSub
	wire      *newswire.Wire
	router    http.Handler
}

func (s *ServerSuite) SetupTest() {
	reg := prometheus.NewRegistry()
	pub := news.NewPublisher(news.WithOutput(io.Discard), news.WithRecorder(metrics.New(reg)))
	s.transport = network.NewMemoryPubSub(0, nil)
	s.wire = newswire.New(pub, s.transport)
	s.router = NewServer(s.wire, WithGatherer(reg)).Handler()
}

func (s *ServerSuite) TearDownTest() {
	s.wire.Close()
	_ = s.transport.Close()
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *ServerSuite) TestLatestBeforePublish() {
	rec := s.do(http.MethodGet, "/api/news/latest", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	body := s.decode(rec)
	s.Equal(false, body["present"])
	s.Equal("", body["content"])
}

func (s *ServerSuite) TestPublishUpdatesLatest() {
	rec := s.do(http.MethodPost, "/api/news/publish", `{"content":"New sports article has been published"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/news/latest", "")
	body := s.decode(rec)
	s.Equal(true, body["present"])
	s.Equal("New sports article has been published", body["content"])
}

func (s *ServerSuite) TestPublishRejectsBadBodies() {
	rec := s.do(http.MethodPost, "/api/news/publish", `{not json`)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/news/publish", `{}`)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("content required", s.decode(rec)["error"])

	rec = s.do(http.MethodPost, "/api/news/publish", `{"content":null}`)
	s.Equal(http.StatusBadRequest, rec.Code)

	_, present := s.wire.Latest()
	s.False(present)
}

func (s *ServerSuite) TestPublishReportsAnnounceFailure() {
	s.Require().NoError(s.transport.Close())

	rec := s.do(http.MethodPost, "/api/news/publish", `{"content":"local only"}`)
	s.Equal(http.StatusBadGateway, rec.Code)

	latest, present := s.wire.Latest()
	s.True(present)
	s.Equal("local only", latest)
}

func (s *ServerSuite) TestSubscribersListInOrder() {
	s.Require().NoError(s.wire.AddSubscriber(news.NewSubscriber("Subscriber-1", io.Discard)))
	s.Require().NoError(s.wire.AddSubscriber(news.NewSubscriber("Subscriber-2", io.Discard)))

	rec := s.do(http.MethodGet, "/api/news/subscribers", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal([]any{"Subscriber-1", "Subscriber-2"}, s.decode(rec)["subscribers"])
}

func (s *ServerSuite) TestStreamRequiresName() {
	rec := s.do(http.MethodGet, "/api/news/stream", "")
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Zero(len(s.wire.Subscribers()))
}

func (s *ServerSuite) TestMetricsEndpoint() {
	s.do(http.MethodPost, "/api/news/publish", `{"content":"counted"}`)

	rec := s.do(http.MethodGet, "/metrics", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "newsroom_publish_total 1")
}

func (s *ServerSuite) TestPreflight() {
	rec := s.do(http.MethodOptions, "/api/news/publish", "")
	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStreamJoinsAndLeavesMembership(t *testing.T) {
	pub := news.NewPublisher(news.WithOutput(io.Discard))
	transport := network.NewMemoryPubSub(0, nil)
	defer transport.Close()
	wire := newswire.New(pub, transport)

	srv := httptest.NewServer(NewServer(wire).Handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/news/stream?name=browser", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return wire.Len() == 1 }, 3*time.Second, 20*time.Millisecond)
	require.Equal(t, "browser", wire.Subscribers()[0].Name())

	require.NoError(t, wire.Publish("breaking"))

	lines := make(chan string, 8)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	var data string
	timeout := time.After(3 * time.Second)
	for data == "" {
		select {
		case line, ok := <-lines:
			require.True(t, ok, "stream closed before delivery")
			if strings.HasPrefix(line, "data: ") {
				data = strings.TrimPrefix(line, "data: ")
			}
		case <-timeout:
			t.Fatal("timed out waiting for stream delivery")
		}
	}

	var got delivery
	require.NoError(t, json.Unmarshal([]byte(data), &got))
	require.Equal(t, delivery{Subscriber: "browser", Content: "breaking"}, got)

	cancel()
	require.Eventually(t, func() bool { return wire.Len() == 0 }, 3*time.Second, 20*time.Millisecond)
}
