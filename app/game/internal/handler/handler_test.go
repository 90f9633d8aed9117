package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/creatorsim/app/game/internal/manager"
	"github.com/lk2023060901/creatorsim/app/game/internal/masterdata"
	"github.com/lk2023060901/creatorsim/app/game/internal/repository"
	"github.com/lk2023060901/creatorsim/app/game/internal/rng"
	"github.com/lk2023060901/creatorsim/app/game/internal/service"
	"github.com/lk2023060901/creatorsim/pkg/logger"
	"github.com/lk2023060901/creatorsim/pkg/security"
	"github.com/lk2023060901/creatorsim/pkg/web/errors"
	"github.com/lk2023060901/creatorsim/pkg/web/validator"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type seqIDs struct {
	n atomic.Int64
}

func (g *seqIDs) NextID() (int64, error) {
	return g.n.Add(1), nil
}

type handlerSuite struct {
	suite.Suite

	engine *gin.Engine
	clock  *testClock
	jwt    *security.JWTManager
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(handlerSuite))
}

func (s *handlerSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	validator.Init()
}

func (s *handlerSuite) SetupTest() {
	l := logger.NewNoop()
	table, err := masterdata.LoadDefault()
	s.Require().NoError(err)
	store := masterdata.NewStatic(table)
	locker, err := manager.NewPlayerLocker(&manager.LockConfig{}, nil, l)
	s.Require().NoError(err)
	s.jwt, err = security.NewJWTManager(&security.JWTConfig{SecretKey: "handler-test", ExpiresIn: time.Hour})
	s.Require().NoError(err)

	var seq atomic.Int64
	s.clock = &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	repo := repository.NewMemoryRepository(l)
	exec := service.NewExecutor(repo, locker, store, rng.NewFactory(7), nil, l,
		service.WithClock(s.clock.Now),
		service.WithIDGenerator(func() string { return fmt.Sprintf("id-%04d", seq.Add(1)) }),
	)
	ranking, err := service.NewRankingService(&service.RankingConfig{SnapshotTTL: time.Nanosecond}, repo, nil, nil, l)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = ranking.Close() })

	h := NewHandlers(l,
		service.NewPlayerService(exec, repo, nil, l),
		service.NewGachaService(exec, &seqIDs{}, nil, l),
		service.NewCharacterService(exec, nil, l),
		service.NewEquipmentService(exec, nil, l),
		service.NewContentService(exec, repo, nil, l),
		ranking,
		service.NewMasterDataService(store),
		service.NewAdminService(exec, repo, nil, l),
	)
	s.engine = gin.New()
	h.Register(s.engine, Options{JWT: s.jwt})
}

func (s *handlerSuite) token(playerID string, roles ...string) string {
	token, err := s.jwt.GenerateToken(playerID, roles...)
	s.Require().NoError(err)
	return token
}

// do 发送请求并解析统一响应
func (s *handlerSuite) do(method, path, token string, body any) (int, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (s *handlerSuite) data(env envelope, v any) {
	s.Require().NoError(json.Unmarshal(env.Data, v))
}

func (s *handlerSuite) TestPublicEndpoints() {
	status, env := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, status)
	s.Equal(errors.CodeOK, env.Code)
	var health struct {
		Status string `json:"status"`
		Build  struct {
			AppName string `json:"appName"`
			Version string `json:"version"`
		} `json:"build"`
	}
	s.data(env, &health)
	s.Equal("ok", health.Status)
	s.Equal("creatorsim-game", health.Build.AppName)
	s.NotEmpty(health.Build.Version)

	status, env = s.do(http.MethodGet, "/api/master-data/version", "", nil)
	s.Equal(http.StatusOK, status)
	var version struct {
		Version  int    `json:"version"`
		Checksum string `json:"checksum"`
	}
	s.data(env, &version)
	s.Positive(version.Version)
	s.NotEmpty(version.Checksum)

	req := httptest.NewRequest(http.MethodGet, "/api/master-data", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	s.Equal(http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	s.Equal(`"`+version.Checksum+`"`, etag)

	req = httptest.NewRequest(http.MethodGet, "/api/master-data", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	s.Equal(http.StatusNotModified, w.Code)

	status, env = s.do(http.MethodGet, "/api/characters", "", nil)
	s.Equal(http.StatusOK, status)
	var catalog []map[string]any
	s.data(env, &catalog)
	s.NotEmpty(catalog)
}

func (s *handlerSuite) TestRequiresToken() {
	status, env := s.do(http.MethodGet, "/api/player/me", "", nil)
	s.Equal(http.StatusUnauthorized, status)
	s.Equal(errors.CodeUnAuthorized, env.Code)
}

func (s *handlerSuite) TestProfileAndUpdate() {
	token := s.token("p1")
	status, env := s.do(http.MethodGet, "/api/player/me", token, nil)
	s.Require().Equal(http.StatusOK, status)
	var p struct {
		ID      string `json:"playerId"`
		Tickets int64  `json:"tickets"`
		Gems    int64  `json:"gems"`
	}
	s.data(env, &p)
	s.Equal("p1", p.ID)
	s.Equal(int64(10), p.Tickets)

	status, env = s.do(http.MethodPut, "/api/player/me", token, map[string]string{"name": "  Mika  "})
	s.Require().Equal(http.StatusOK, status)
	var updated struct {
		Name string `json:"name"`
	}
	s.data(env, &updated)
	s.Equal("Mika", updated.Name)

	status, env = s.do(http.MethodPut, "/api/player/me", token, map[string]string{})
	s.Equal(http.StatusBadRequest, status)
	s.Equal(errors.CodeInvalidParams, env.Code)
}

func (s *handlerSuite) TestDrawThenInsufficient() {
	token := s.token("p1")
	status, env := s.do(http.MethodPost, "/api/gacha/draw", token, map[string]any{"count": 10, "useTicket": true})
	s.Require().Equal(http.StatusOK, status, env.Message)
	var draw service.DrawResponse
	s.data(env, &draw)
	s.Len(draw.Results, 10)
	s.Zero(draw.RemainingTickets)
	s.Equal(int64(100), draw.RemainingGems)

	status, env = s.do(http.MethodPost, "/api/gacha/draw", token, map[string]any{"count": 1, "useTicket": true})
	s.Equal(http.StatusConflict, status)
	s.Equal(errors.CodeInsufficientResource, env.Code)
	var detail struct {
		Resource  string `json:"resource"`
		Required  int64  `json:"required"`
		Available int64  `json:"available"`
	}
	s.data(env, &detail)
	s.Equal(int64(1), detail.Required)
	s.Zero(detail.Available)

	status, env = s.do(http.MethodGet, "/api/player/characters", token, nil)
	s.Require().Equal(http.StatusOK, status)
	var owned []map[string]any
	s.data(env, &owned)
	s.Len(owned, 10)
}

func (s *handlerSuite) TestInvalidRequests() {
	token := s.token("p1")

	req := httptest.NewRequest(http.MethodPost, "/api/gacha/draw", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	s.Equal(http.StatusBadRequest, w.Code)

	status, env := s.do(http.MethodPost, "/api/player/characters/x/breakthrough", token, map[string]any{})
	s.Equal(http.StatusBadRequest, status)
	s.Equal(errors.CodeInvalidParams, env.Code)

	status, env = s.do(http.MethodPost, "/api/player/characters/missing/levelup", token, map[string]any{"expChipsToUse": 1})
	s.Equal(http.StatusNotFound, status)
	s.Equal(errors.CodeNotFound, env.Code)

	status, env = s.do(http.MethodGet, "/api/rankings/unknown", token, nil)
	s.Equal(http.StatusBadRequest, status)
	s.Equal(errors.CodeInvalidParams, env.Code)

	status, _ = s.do(http.MethodGet, "/api/content/history?pageSize=abc", token, nil)
	s.Equal(http.StatusBadRequest, status)
}

func (s *handlerSuite) TestEquipment() {
	token := s.token("p1")
	status, env := s.do(http.MethodGet, "/api/player/equipment", token, nil)
	s.Require().Equal(http.StatusOK, status)
	var slots []struct {
		Type  string `json:"equipmentType"`
		Level int    `json:"level"`
	}
	s.data(env, &slots)
	s.NotEmpty(slots)

	status, env = s.do(http.MethodPost, "/api/player/equipment/"+slots[0].Type+"/upgrade", token, nil)
	s.Require().Equal(http.StatusOK, status, env.Message)
	var up struct {
		NewLevel int `json:"newLevel"`
	}
	s.data(env, &up)
	s.Equal(slots[0].Level+1, up.NewLevel)

	status, env = s.do(http.MethodPost, "/api/player/equipment/Nope/upgrade", token, nil)
	s.Equal(http.StatusBadRequest, status)
	s.Equal(errors.CodeInvalidParams, env.Code)
}

func (s *handlerSuite) TestContentFlow() {
	token := s.token("p1")
	status, env := s.do(http.MethodPost, "/api/gacha/draw", token, map[string]any{"count": 2, "useTicket": true})
	s.Require().Equal(http.StatusOK, status)
	var draw service.DrawResponse
	s.data(env, &draw)

	status, env = s.do(http.MethodPost, "/api/content/start", token, map[string]any{
		"title":                "first video",
		"genre":                "Gaming",
		"characterInstanceIds": []string{draw.Results[0].InstanceID},
	})
	s.Require().Equal(http.StatusOK, status, env.Message)
	var job struct {
		ID               string `json:"contentId"`
		RemainingSeconds int64  `json:"remainingSeconds"`
	}
	s.data(env, &job)
	s.Equal(int64(600), job.RemainingSeconds)

	status, env = s.do(http.MethodPost, "/api/content/start", token, map[string]any{
		"title":                "second",
		"genre":                "Gaming",
		"characterInstanceIds": []string{draw.Results[1].InstanceID},
	})
	s.Equal(http.StatusConflict, status)
	s.Equal(errors.CodeStateConflict, env.Code)

	s.clock.Advance(599 * time.Second)
	status, env = s.do(http.MethodPost, "/api/content/"+job.ID+"/complete", token, nil)
	s.Equal(http.StatusConflict, status)
	s.Equal(errors.CodeStillInProgress, env.Code)
	var pending struct {
		RemainingSeconds int64 `json:"remainingSeconds"`
	}
	s.data(env, &pending)
	s.Equal(int64(1), pending.RemainingSeconds)

	s.clock.Advance(2 * time.Second)
	status, _ = s.do(http.MethodPost, "/api/content/"+job.ID+"/complete", token, nil)
	s.Require().Equal(http.StatusOK, status)

	status, env = s.do(http.MethodPost, "/api/content/"+job.ID+"/upload", token, nil)
	s.Require().Equal(http.StatusOK, status)
	var uploaded struct {
		Views int64 `json:"views"`
	}
	s.data(env, &uploaded)
	s.Positive(uploaded.Views)

	status, env = s.do(http.MethodGet, "/api/content/producing", token, nil)
	s.Require().Equal(http.StatusOK, status)
	s.Equal("null", string(env.Data))

	status, env = s.do(http.MethodGet, "/api/content/history?page=1&pageSize=5", token, nil)
	s.Require().Equal(http.StatusOK, status)
	var page struct {
		Total    int64 `json:"total"`
		PageSize int   `json:"pageSize"`
	}
	s.data(env, &page)
	s.Equal(int64(1), page.Total)
	s.Equal(5, page.PageSize)

	status, env = s.do(http.MethodGet, "/api/rankings/weekly?topN=5", token, nil)
	s.Require().Equal(http.StatusOK, status, env.Message)
}

func (s *handlerSuite) TestAdmin() {
	status, _ := s.do(http.MethodGet, "/api/admin/dashboard", s.token("p1"), nil)
	s.Equal(http.StatusForbidden, status)

	// 先让目标玩家存在
	status, _ = s.do(http.MethodGet, "/api/player/me", s.token("p1"), nil)
	s.Require().Equal(http.StatusOK, status)

	admin := s.token("ops", AdminRole)
	status, env := s.do(http.MethodPost, "/api/admin/players/p1/grant", admin, map[string]any{"gold": 500, "reason": "compensation"})
	s.Require().Equal(http.StatusOK, status, env.Message)
	var balances struct {
		Gold int64 `json:"gold"`
	}
	s.data(env, &balances)
	s.Equal(int64(1500), balances.Gold)

	status, env = s.do(http.MethodPost, "/api/admin/players/ghost/grant", admin, map[string]any{"gold": 1})
	s.Equal(http.StatusNotFound, status)
	s.Equal(errors.CodeNotFound, env.Code)

	status, env = s.do(http.MethodGet, "/api/admin/dashboard", admin, nil)
	s.Require().Equal(http.StatusOK, status)
	var dash struct {
		Players int64 `json:"totalPlayers"`
	}
	s.data(env, &dash)
	s.Equal(int64(1), dash.Players)

	status, _ = s.do(http.MethodGet, "/api/admin/statistics/gacha", admin, nil)
	s.Equal(http.StatusOK, status)

	status, _ = s.do(http.MethodGet, "/api/admin/players/p1", admin, nil)
	s.Equal(http.StatusOK, status)

	status, env = s.do(http.MethodPost, "/api/admin/master-data/reload", admin, nil)
	s.Equal(http.StatusBadRequest, status)
	s.Equal(errors.CodeInvalidParams, env.Code)
}
