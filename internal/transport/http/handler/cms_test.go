package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/multibrand-site/internal/domain"
	jwtinfra "github.com/multibrand-site/internal/infrastructure/jwt"
	"github.com/multibrand-site/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCMSSvc struct{ mock.Mock }

func (m *mockCMSSvc) List(ctx context.Context, kind domain.Kind) ([]domain.ContentRecord, error) {
	args := m.Called(ctx, kind)
	recs, _ := args.Get(0).([]domain.ContentRecord)
	return recs, args.Error(1)
}

func (m *mockCMSSvc) Get(ctx context.Context, kind domain.Kind, recordID string) (*domain.ContentRecord, error) {
	args := m.Called(ctx, kind, recordID)
	if rec, _ := args.Get(0).(*domain.ContentRecord); rec != nil {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCMSSvc) Create(ctx context.Context, kind domain.Kind, data json.RawMessage) (*domain.ContentRecord, error) {
	args := m.Called(ctx, kind, data)
	if rec, _ := args.Get(0).(*domain.ContentRecord); rec != nil {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCMSSvc) Update(ctx context.Context, kind domain.Kind, recordID string, patch json.RawMessage) (*domain.ContentRecord, error) {
	args := m.Called(ctx, kind, recordID, patch)
	if rec, _ := args.Get(0).(*domain.ContentRecord); rec != nil {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCMSSvc) Delete(ctx context.Context, kind domain.Kind, recordID string) error {
	return m.Called(ctx, kind, recordID).Error(0)
}

func TestCMSGet_List(t *testing.T) {
	svc := &mockCMSSvc{}
	recs := []domain.ContentRecord{
		{Kind: domain.KindQA, ID: "a", Data: json.RawMessage(`{"question":"Q1"}`)},
		{Kind: domain.KindQA, ID: "b", Data: json.RawMessage(`{"question":"Q2"}`)},
	}
	svc.On("List", mock.Anything, domain.KindQA).Return(recs, nil)
	h := NewCMSHandler(svc)

	rr := httptest.NewRecorder()
	h.Get(rr, httptest.NewRequest(http.MethodGet, "/cms?type=qa", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var got []domain.ContentRecord
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Len(t, got, 2)
	svc.AssertExpectations(t)
}

func TestCMSGet_EmptyListIsArray(t *testing.T) {
	svc := &mockCMSSvc{}
	svc.On("List", mock.Anything, domain.KindBanner).Return(nil, nil)
	h := NewCMSHandler(svc)

	rr := httptest.NewRecorder()
	h.Get(rr, httptest.NewRequest(http.MethodGet, "/cms?type=banner", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestCMSGet_ByID_NotFound(t *testing.T) {
	svc := &mockCMSSvc{}
	svc.On("Get", mock.Anything, domain.KindProduct, "missing").Return(nil, fmt.Errorf("get: %w", domain.ErrNotFound))
	h := NewCMSHandler(svc)

	rr := httptest.NewRecorder()
	h.Get(rr, httptest.NewRequest(http.MethodGet, "/cms?type=product&id=missing", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not found", decodeEnvelope(t, rr).Error)
}

func TestCMSGet_UnknownType(t *testing.T) {
	svc := &mockCMSSvc{}
	h := NewCMSHandler(svc)

	rr := httptest.NewRecorder()
	h.Get(rr, httptest.NewRequest(http.MethodGet, "/cms?type=widget", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "unknown content type", decodeEnvelope(t, rr).Error)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestCMSWrites_RejectFormOnlyKinds(t *testing.T) {
	svc := &mockCMSSvc{}
	h := NewCMSHandler(svc)

	cases := []struct {
		name   string
		method string
		serve  http.HandlerFunc
		body   map[string]string
	}{
		{"create", http.MethodPost, h.Create, map[string]string{"type": "message"}},
		{"update", http.MethodPut, h.Update, map[string]string{"type": "subscriber", "id": "s1"}},
		{"delete", http.MethodDelete, h.Delete, map[string]string{"type": "", "id": "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tc.serve(rr, jsonReq(t, tc.method, "/cms", tc.body))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "unknown content type", decodeEnvelope(t, rr).Error)
		})
	}
	assert.Empty(t, svc.Calls)
}

func TestCMSCreate_HappyPath(t *testing.T) {
	svc := &mockCMSSvc{}
	data := json.RawMessage(`{"title":"Intro","url":"https://youtu.be/x"}`)
	rec := &domain.ContentRecord{Kind: domain.KindVideoLink, ID: "v1", Order: 3, Data: data}
	svc.On("Create", mock.Anything, domain.KindVideoLink, data).Return(rec, nil)
	h := NewCMSHandler(svc)

	body := []byte(`{"type":"videoLink","data":{"title":"Intro","url":"https://youtu.be/x"}}`)
	rr := httptest.NewRecorder()
	h.Create(rr, httptest.NewRequest(http.MethodPost, "/cms", bytes.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rr.Code)
	var got domain.ContentRecord
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, 3, got.Order)
	svc.AssertExpectations(t)
}

func TestCMSCreate_InvalidBody(t *testing.T) {
	svc := &mockCMSSvc{}
	h := NewCMSHandler(svc)

	rr := httptest.NewRecorder()
	h.Create(rr, httptest.NewRequest(http.MethodPost, "/cms", bytes.NewBufferString("{")))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCMSUpdate_RequiresID(t *testing.T) {
	svc := &mockCMSSvc{}
	h := NewCMSHandler(svc)

	rr := httptest.NewRecorder()
	h.Update(rr, jsonReq(t, http.MethodPut, "/cms", map[string]interface{}{"type": "qa", "data": map[string]string{}}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCMSUpdate_HappyPath(t *testing.T) {
	svc := &mockCMSSvc{}
	patch := json.RawMessage(`{"answer":"Yes"}`)
	rec := &domain.ContentRecord{Kind: domain.KindQA, ID: "q1", Data: json.RawMessage(`{"question":"Q","answer":"Yes"}`)}
	svc.On("Update", mock.Anything, domain.KindQA, "q1", patch).Return(rec, nil)
	h := NewCMSHandler(svc)

	body := []byte(`{"type":"qa","id":"q1","data":{"answer":"Yes"}}`)
	rr := httptest.NewRecorder()
	h.Update(rr, httptest.NewRequest(http.MethodPut, "/cms", bytes.NewReader(body)))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestCMSDelete_HappyPath(t *testing.T) {
	svc := &mockCMSSvc{}
	svc.On("Delete", mock.Anything, domain.KindReview, "r1").Return(nil)
	h := NewCMSHandler(svc)

	rr := httptest.NewRecorder()
	h.Delete(rr, jsonReq(t, http.MethodDelete, "/cms", map[string]string{"type": "review", "id": "r1"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "deleted", decodeEnvelope(t, rr).Message)
	svc.AssertExpectations(t)
}

func TestCMSDelete_StoreFailure(t *testing.T) {
	svc := &mockCMSSvc{}
	svc.On("Delete", mock.Anything, domain.KindReview, "r1").Return(errors.New("connection reset"))
	h := NewCMSHandler(svc)

	rr := httptest.NewRecorder()
	h.Delete(rr, jsonReq(t, http.MethodDelete, "/cms", map[string]string{"type": "review", "id": "r1"}))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal server error", decodeEnvelope(t, rr).Error)
}

func TestActor(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/cms", nil)
	assert.Equal(t, "unknown", actor(r))

	ctx := middleware.WithClaims(r.Context(), &jwtinfra.Claims{Email: "owner@example.com", Role: domain.RoleAdmin})
	assert.Equal(t, "owner@example.com", actor(r.WithContext(ctx)))
}
