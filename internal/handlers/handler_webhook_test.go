package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/finance_bot/internal/handlers"
	"github.com/SscSPs/finance_bot/internal/middleware"
	"github.com/SscSPs/finance_bot/internal/platform/config"
)

type recordingProcessor struct {
	mu      sync.Mutex
	updates []tgbotapi.Update
	ctxErrs []error
}

func (p *recordingProcessor) ProcessUpdate(ctx context.Context, update tgbotapi.Update) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, update)
	p.ctxErrs = append(p.ctxErrs, ctx.Err())
}

type WebhookHandlerTestSuite struct {
	suite.Suite
	router    *gin.Engine
	processor *recordingProcessor
}

func (suite *WebhookHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.processor = &recordingProcessor{}
	cfg := &config.Config{WebhookBaseURL: "https://bot.example.com", WebhookSecret: "s3cret"}

	lim, err := middleware.NewRateLimiter("100-M")
	suite.Require().NoError(err)

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, cfg, suite.processor, lim)
}

func (suite *WebhookHandlerTestSuite) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *WebhookHandlerTestSuite) TestHealth() {
	w := suite.do(http.MethodGet, "/health", "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func (suite *WebhookHandlerTestSuite) TestLiveness() {
	w := suite.do(http.MethodGet, "/webhook/s3cret", "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("Bot is live!", w.Body.String())
}

func (suite *WebhookHandlerTestSuite) TestForwardsUpdate() {
	body := `{"update_id":10,"message":{"message_id":7,"date":1752469200,"chat":{"id":42,"type":"private"},"from":{"id":1001,"is_bot":false,"first_name":"Sari"},"text":"/out 15000 lunch"}}`

	w := suite.do(http.MethodPost, "/webhook/s3cret", body)

	suite.Equal(http.StatusOK, w.Code)
	suite.Require().Len(suite.processor.updates, 1)
	got := suite.processor.updates[0]
	suite.Equal(10, got.UpdateID)
	suite.Equal("/out 15000 lunch", got.Message.Text)
	suite.Equal(int64(42), got.Message.Chat.ID)
	suite.Equal(int64(1001), got.Message.From.ID)
	suite.NoError(suite.processor.ctxErrs[0])
}

func (suite *WebhookHandlerTestSuite) TestWrongSecret() {
	suite.Equal(http.StatusNotFound, suite.do(http.MethodGet, "/webhook/nope", "").Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodPost, "/webhook/nope", `{"update_id":1}`).Code)
	suite.Empty(suite.processor.updates)
}

func (suite *WebhookHandlerTestSuite) TestMalformedBody() {
	w := suite.do(http.MethodPost, "/webhook/s3cret", "{not json")
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Empty(suite.processor.updates)
}

func TestWebhookHandler(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}

func TestRegisterRoutes_PollingModeHasNoWebhook(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers.RegisterRoutes(r, &config.Config{}, &recordingProcessor{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/webhook/anything", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
