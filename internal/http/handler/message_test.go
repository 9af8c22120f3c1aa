package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"bloodbridge.app/engage/internal/http/handler"
	"bloodbridge.app/engage/internal/model"
)

var _ = Describe("MessageHandler", func() {
	var (
		router   *gin.Engine
		messages *mockMessageStore
	)

	doJSON := func(method, path string, payload any) *httptest.ResponseRecorder {
		var req *http.Request
		if payload != nil {
			body, _ := json.Marshal(payload)
			req = httptest.NewRequest(method, path, bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		messages = &mockMessageStore{}
		h := handler.NewMessageHandler(messages)
		router.POST("/messages", h.Create)
		router.GET("/messages", h.List)
	})

	Describe("Create", func() {
		It("records an off-platform message", func() {
			var stored *model.Message
			messages.createFn = func(ctx context.Context, msg *model.Message) error {
				stored = msg
				msg.Timestamp = time.Now()
				return nil
			}

			w := doJSON(http.MethodPost, "/messages", map[string]string{
				"user_id":   "9",
				"channel":   "phone",
				"direction": "out",
				"text":      "Called donor to confirm availability",
			})
			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(stored).NotTo(BeNil())
			Expect(stored.ID).NotTo(BeZero())
			Expect(stored.Channel).To(Equal("phone"))
			Expect(stored.Direction).To(Equal(model.DirectionOut))
			Expect(*stored.UserID).To(Equal(int64(9)))
		})

		It("rejects an unknown direction", func() {
			w := doJSON(http.MethodPost, "/messages", map[string]string{
				"channel":   "phone",
				"direction": "sideways",
				"text":      "hi",
			})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 500 when the store fails", func() {
			messages.createFn = func(ctx context.Context, msg *model.Message) error {
				return errors.New("db down")
			}

			w := doJSON(http.MethodPost, "/messages", map[string]string{
				"channel":   "phone",
				"direction": "in",
				"text":      "hi",
			})
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("List", func() {
		It("filters by user and passes the limit through", func() {
			messages.listFn = func(ctx context.Context, userID *int64, limit int) ([]model.Message, error) {
				Expect(userID).NotTo(BeNil())
				Expect(*userID).To(Equal(int64(9)))
				Expect(limit).To(Equal(10))
				return []model.Message{
					{ID: 1, Channel: "whatsapp", Direction: model.DirectionIn, Text: "donate"},
				}, nil
			}

			w := doJSON(http.MethodGet, "/messages?user_id=9&limit=10", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp struct {
				Count int `json:"count"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Count).To(Equal(1))
		})

		It("rejects a non-numeric user id", func() {
			w := doJSON(http.MethodGet, "/messages?user_id=bob", nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
