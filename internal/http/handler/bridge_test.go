package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"bloodbridge.app/engage/internal/http/handler"
	"bloodbridge.app/engage/internal/model"
)

var _ = Describe("BridgeHandler", func() {
	var (
		router  *gin.Engine
		bridges *mockBridgeService
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
		bridges = &mockBridgeService{}
		h := handler.NewBridgeHandler(bridges)
		router.POST("/bridges", h.Create)
		router.GET("/bridges", h.List)
		router.GET("/bridges/:id", h.GetByID)
		router.PATCH("/bridges/:id/status", h.UpdateStatus)
	})

	It("creates a bridge", func() {
		bridges.createFn = func(ctx context.Context, requestID, donorUserID int64, notes *string) (*model.Bridge, error) {
			Expect(requestID).To(Equal(int64(42)))
			Expect(donorUserID).To(Equal(int64(9)))
			return &model.Bridge{ID: 7, RequestID: requestID, DonorUserID: donorUserID, Status: model.BridgePending}, nil
		}

		w := doJSON(http.MethodPost, "/bridges", map[string]string{
			"request_id":    "42",
			"donor_user_id": "9",
		})
		Expect(w.Code).To(Equal(http.StatusCreated))

		var resp struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.ID).To(Equal("7"))
		Expect(resp.Status).To(Equal("pending"))
	})

	It("rejects a bridge for an unknown request or donor", func() {
		bridges.createFn = func(ctx context.Context, requestID, donorUserID int64, notes *string) (*model.Bridge, error) {
			return nil, fmt.Errorf("creating bridge: %w", &pgconn.PgError{Code: "23503"})
		}

		w := doJSON(http.MethodPost, "/bridges", map[string]string{
			"request_id":    "42",
			"donor_user_id": "9",
		})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects a bridge with missing fields", func() {
		w := doJSON(http.MethodPost, "/bridges", map[string]string{"request_id": "42"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("lists bridges for a request", func() {
		bridges.listByRequestFn = func(ctx context.Context, requestID int64) ([]model.Bridge, error) {
			Expect(requestID).To(Equal(int64(42)))
			return []model.Bridge{
				{ID: 1, RequestID: 42, Status: model.BridgeConfirmed},
				{ID: 2, RequestID: 42, Status: model.BridgePending},
			}, nil
		}

		w := doJSON(http.MethodGet, "/bridges?request_id=42", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp struct {
			Count int `json:"count"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Count).To(Equal(2))
	})

	It("requires a request id when listing bridges", func() {
		w := doJSON(http.MethodGet, "/bridges", nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns a bridge by id", func() {
		bridges.getByIDFn = func(ctx context.Context, bridgeID int64) (*model.Bridge, error) {
			return &model.Bridge{ID: bridgeID, RequestID: 42, Status: model.BridgeConfirmed}, nil
		}

		w := doJSON(http.MethodGet, "/bridges/7", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.ID).To(Equal("7"))
		Expect(resp.Status).To(Equal("confirmed"))
	})

	It("returns 404 for an unknown bridge", func() {
		w := doJSON(http.MethodGet, "/bridges/999", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("marks a bridge completed", func() {
		bridges.updateStatusFn = func(ctx context.Context, bridgeID int64, status model.BridgeStatus) (*model.Bridge, error) {
			Expect(status).To(Equal(model.BridgeCompleted))
			return &model.Bridge{ID: bridgeID, Status: status}, nil
		}

		w := doJSON(http.MethodPatch, "/bridges/7/status", map[string]string{"status": "completed"})
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("rejects an unknown status", func() {
		w := doJSON(http.MethodPatch, "/bridges/7/status", map[string]string{"status": "archived"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
