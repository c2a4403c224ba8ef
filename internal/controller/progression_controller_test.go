package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"learning_points_backend/internal/config"
	"learning_points_backend/internal/middleware"
	"learning_points_backend/internal/model"
	"learning_points_backend/internal/repository"
	"learning_points_backend/internal/repository/testutil"
	"learning_points_backend/internal/service"
	"learning_points_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const testSecret = "controller-test-secret-with-32-chars!"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupRouter(t *testing.T) (*gin.Engine, func(role model.UserRole) (string, uint)) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	userRepo := repository.NewUserRepository(db)
	scoreRepo := repository.NewUserScoreRepository(db)
	levels := service.NewLevelConfigService(repository.NewLevelConfigRepository(db))
	scores := service.NewScoreService(scoreRepo)
	board := service.NewLeaderboardService(scoreRepo, userRepo, 10, 100)
	progression := service.NewProgressionService(db, userRepo, repository.NewAttemptLedgerRepository(db),
		scores, levels, service.NewStreakService(userRepo), board, service.ProgressionOptions{})

	pc := NewProgressionController(progression, levels)
	jwtCfg := config.JWTConfig{Secret: testSecret, ExpireTime: time.Hour, CookieName: "access_token"}

	r := gin.New()
	r.GET("/api/progression/leaderboard", pc.GetLeaderboard)
	auth := r.Group("/api", middleware.AuthMiddleware(jwtCfg))
	auth.GET("/progression/me", pc.GetMyProgression)
	auth.GET("/progression/attempt-status", pc.GetAttemptStatus)
	auth.GET("/progression/history", pc.GetHistory)
	auth.POST("/progression/award-points/section", pc.AwardSection)
	auth.POST("/progression/award-points/quiz", pc.AwardQuiz)
	auth.POST("/progression/init-defaults", middleware.RoleMiddleware(model.Admin), pc.InitDefaults)

	n := 0
	login := func(role model.UserRole) (string, uint) {
		n++
		u := testutil.SeedUser(t, db, "user"+string(rune('a'+n)))
		u.Role = role
		token, err := util.GenerateJWT(u, testSecret, time.Hour)
		if err != nil {
			t.Fatalf("GenerateJWT: %v", err)
		}
		return token, u.ID
	}
	return r, login
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestAwardSection_RequiresAuth(t *testing.T) {
	r, _ := setupRouter(t)
	w, _ := doJSON(t, r, http.MethodPost, "/api/progression/award-points/section", "", gin.H{"sectionId": "s1"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAwardSection_FirstAttemptThenRepeat(t *testing.T) {
	r, login := setupRouter(t)
	token, _ := login(model.Student)

	body := gin.H{"sectionId": "s1", "moduleDifficulty": "Intermediate"}
	w, env := doJSON(t, r, http.MethodPost, "/api/progression/award-points/section", token, body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var first service.AwardResult
	if err := json.Unmarshal(env.Data, &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !first.IsFirstAttempt || first.PointsGained != 3 {
		t.Fatalf("first = %+v", first)
	}

	w, env = doJSON(t, r, http.MethodPost, "/api/progression/award-points/section", token, body)
	if w.Code != http.StatusOK {
		t.Fatalf("repeat status = %d", w.Code)
	}
	var second service.AwardResult
	if err := json.Unmarshal(env.Data, &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if second.IsFirstAttempt || second.PointsGained != 0 {
		t.Fatalf("second = %+v", second)
	}

	w, env = doJSON(t, r, http.MethodGet, "/api/progression/attempt-status?source=section_read&sourceId=s1", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("attempt-status = %d", w.Code)
	}
	var status service.AttemptStatus
	_ = json.Unmarshal(env.Data, &status)
	if status.IsFirstAttempt {
		t.Error("attempt-status should report the section as attempted")
	}
}

func TestAwardQuiz_InvalidDifficulty(t *testing.T) {
	r, login := setupRouter(t)
	token, _ := login(model.Student)

	w, _ := doJSON(t, r, http.MethodPost, "/api/progression/award-points/quiz", token,
		gin.H{"quizId": "q1", "moduleDifficulty": "legendary", "score": 3, "maxScore": 5})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestAwardQuiz_ScoreBounds(t *testing.T) {
	r, login := setupRouter(t)
	token, _ := login(model.Student)

	bodies := []gin.H{
		{"quizId": "q1", "moduleDifficulty": "advanced", "score": 3},
		{"quizId": "q1", "moduleDifficulty": "advanced", "score": 6, "maxScore": 5},
		{"quizId": "q1", "moduleDifficulty": "advanced", "score": -1, "maxScore": 5},
		{"quizId": "q1", "moduleDifficulty": "advanced", "score": 2305843009213693953, "maxScore": 2305843009213693953},
	}
	for i, body := range bodies {
		w, _ := doJSON(t, r, http.MethodPost, "/api/progression/award-points/quiz", token, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %d: status = %d, want 400", i, w.Code)
		}
	}

	w, env := doJSON(t, r, http.MethodGet, "/api/progression/attempt-status?source=module_quiz&sourceId=q1", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("attempt-status = %d", w.Code)
	}
	var status service.AttemptStatus
	_ = json.Unmarshal(env.Data, &status)
	if !status.IsFirstAttempt {
		t.Error("rejected quiz awards must not mark the attempt")
	}
}

func TestHistory_Paging(t *testing.T) {
	r, login := setupRouter(t)
	token, _ := login(model.Student)

	for _, id := range []string{"s1", "s2", "s3"} {
		if w, _ := doJSON(t, r, http.MethodPost, "/api/progression/award-points/section", token, gin.H{"sectionId": id}); w.Code != http.StatusOK {
			t.Fatalf("award %s: status = %d", id, w.Code)
		}
	}

	w, env := doJSON(t, r, http.MethodGet, "/api/progression/history?page=2&limit=2", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history status = %d", w.Code)
	}
	var page struct {
		List  []model.PointsGainRecord `json:"list"`
		Total int64                    `json:"total"`
		Page  int                      `json:"page"`
		Limit int                      `json:"limit"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 3 || page.Page != 2 || page.Limit != 2 || len(page.List) != 1 {
		t.Fatalf("page = %+v", page)
	}
}

func TestMyProgressionAndLeaderboard(t *testing.T) {
	r, login := setupRouter(t)
	token, userID := login(model.Student)

	doJSON(t, r, http.MethodPost, "/api/progression/award-points/quiz", token,
		gin.H{"quizId": "q1", "moduleDifficulty": "advanced", "score": 5, "maxScore": 5})

	w, env := doJSON(t, r, http.MethodGet, "/api/progression/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d", w.Code)
	}
	var me service.UserProgression
	if err := json.Unmarshal(env.Data, &me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.Points != 20 || me.Rank != 1 || me.Level != 1 {
		t.Fatalf("me = %+v", me)
	}

	w, env = doJSON(t, r, http.MethodGet, "/api/progression/leaderboard?limit=5", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("leaderboard status = %d", w.Code)
	}
	var board []service.LeaderboardEntry
	if err := json.Unmarshal(env.Data, &board); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(board) != 1 || board[0].UserID != userID || board[0].Score != 20 {
		t.Fatalf("board = %+v", board)
	}
}

func TestInitDefaults_AdminOnly(t *testing.T) {
	r, login := setupRouter(t)
	student, _ := login(model.Student)
	admin, _ := login(model.Admin)

	if w, _ := doJSON(t, r, http.MethodPost, "/api/progression/init-defaults", student, nil); w.Code != http.StatusForbidden {
		t.Fatalf("student status = %d, want 403", w.Code)
	}

	w, env := doJSON(t, r, http.MethodPost, "/api/progression/init-defaults", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin status = %d body = %s", w.Code, w.Body.String())
	}
	var res service.InitResult
	_ = json.Unmarshal(env.Data, &res)
	if res.LevelsCreated != 10 {
		t.Fatalf("result = %+v", res)
	}
}
