package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"healthcred/internal/intake"
	"healthcred/internal/intake/analyzer"
	"healthcred/internal/intake/blob"
	intakehandler "healthcred/internal/intake/handler"
	"healthcred/internal/offers"
	offershandler "healthcred/internal/offers/handler"
	"healthcred/internal/score"
	scorehandler "healthcred/internal/score/handler"
	"healthcred/internal/wallet"
	wallethandler "healthcred/internal/wallet/handler"
)

// RouterSuite runs the demo flow end to end against in-memory stores.
type RouterSuite struct {
	suite.Suite
	router http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	scoreService := score.New(score.NewInMemoryStore(), score.WithLogger(log))
	offerService := offers.New(
		offers.NewSeededStore(),
		scoreService,
		offers.NewMatcher(offers.DefaultPolicy()),
		offers.WithLogger(log),
	)
	intakeService := intake.New(
		intake.Config{MaxUploadBytes: 10 << 20},
		intake.NewMemoryStore(),
		blob.NewMemoryStore(),
		analyzer.NewHeuristic(0),
		scoreService,
		intake.WithLogger(log),
	)
	tokens := wallet.NewTokenManager([]byte("router-test-key"), time.Hour)
	walletService := wallet.New(wallet.NewSimulated(0), wallet.NewMemoryStore(), tokens, time.Hour,
		wallet.WithLogger(log))

	s.router = New(Handlers{
		Wallet: wallethandler.New(walletService, log),
		Score:  scorehandler.New(scoreService, log),
		Offers: offershandler.New(offerService, log),
		Intake: intakehandler.New(intakeService, log, 10<<20),
	}, tokens, walletService, log)
}

func (s *RouterSuite) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) connect(provider string) string {
	w := s.do(http.MethodPost, "/wallet/connect", "", strings.NewReader(`{"provider":"`+provider+`"}`), "")
	s.Require().Equal(http.StatusCreated, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	return resp.Token
}

func (s *RouterSuite) TestPublicSurface() {
	s.Run("health check is open", func() {
		w := s.do(http.MethodGet, "/healthz", "", nil, "")
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("metrics are open", func() {
		w := s.do(http.MethodGet, "/metrics", "", nil, "")
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("gated routes reject missing tokens", func() {
		for _, path := range []string{"/score", "/offers/matches", "/wallet"} {
			w := s.do(http.MethodGet, path, "", nil, "")
			s.Equal(http.StatusUnauthorized, w.Code, path)
		}
	})

	s.Run("gated routes reject garbage tokens", func() {
		w := s.do(http.MethodGet, "/score", "not.a.token", nil, "")
		s.Equal(http.StatusUnauthorized, w.Code)
	})
}

func (s *RouterSuite) TestConnectThenBrowse() {
	token := s.connect("Yoroi")

	w := s.do(http.MethodGet, "/score", token, nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var scoreResp struct {
		Score int `json:"score"`
	}
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&scoreResp))
	s.Equal(742, scoreResp.Score)

	w = s.do(http.MethodGet, "/offers/matches", token, nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/wallet", token, nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestDisconnectRevokesToken() {
	token := s.connect("Nami")

	w := s.do(http.MethodPost, "/wallet/disconnect", token, nil, "")
	s.Require().Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/score", token, nil, "")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterSuite) TestIntakeFlow() {
	token := s.connect("Begin Wallet")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "receipt.pdf")
	s.Require().NoError(err)
	_, err = part.Write([]byte("%PDF-1.4 pharmacy receipt"))
	s.Require().NoError(err)
	s.Require().NoError(writer.Close())

	w := s.do(http.MethodPost, "/intake", token, &buf, writer.FormDataContentType())
	s.Require().Equal(http.StatusCreated, w.Code)
	var started struct {
		ID string `json:"id"`
	}
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&started))

	w = s.do(http.MethodPost, "/intake/"+started.ID+"/details", token,
		strings.NewReader(`{"record_type":"receipt","amount_cents":24500}`), "")
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/intake/"+started.ID+"/submit", token, nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var final struct {
		State  string `json:"state"`
		Result struct {
			ScoreDelta  int    `json:"score_delta"`
			ContentHash string `json:"content_hash"`
		} `json:"result"`
	}
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&final))
	assert.Equal(s.T(), "complete", final.State)
	assert.Equal(s.T(), 8, final.Result.ScoreDelta)
	require.NotEmpty(s.T(), final.Result.ContentHash)

	// The verified document moved the score.
	w = s.do(http.MethodGet, "/score", token, nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var scoreResp struct {
		Score         int `json:"score"`
		PreviousScore int `json:"previous_score"`
	}
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&scoreResp))
	assert.Equal(s.T(), 750, scoreResp.Score)
	assert.Equal(s.T(), 742, scoreResp.PreviousScore)
}
