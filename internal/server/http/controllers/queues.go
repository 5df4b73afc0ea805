package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/rzbill/httpmq/internal/queue"
	queuesvc "github.com/rzbill/httpmq/internal/services/queues"
)

// QueuesController exposes the queue service as a JSON API under /v1/queues.
type QueuesController struct {
	svc *queuesvc.Service
}

// NewQueuesController creates a new queues controller.
func NewQueuesController(svc *queuesvc.Service) *QueuesController {
	return &QueuesController{svc: svc}
}

// RegisterRoutes registers all queue routes with the given mux.
func (c *QueuesController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/queues", c.handleList)
	mux.HandleFunc("/v1/queues/put", c.handlePut)
	mux.HandleFunc("/v1/queues/get", c.handleGet)
	mux.HandleFunc("/v1/queues/status", c.handleStatus)
	mux.HandleFunc("/v1/queues/reset", c.handleReset)
	mux.HandleFunc("/v1/queues/maxqueue", c.handleMaxQueue)
	mux.HandleFunc("/v1/queues/view", c.handleView)
	mux.HandleFunc("/v1/queues/items", c.handleItems)
}

func (c *QueuesController) handleList(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	sts, err := c.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]statusJSON, 0, len(sts))
	for _, st := range sts {
		out = append(out, toStatusJSON(st))
	}
	writeJSON(w, map[string]any{"queues": out})
}

func (c *QueuesController) handlePut(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req putReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	seq, err := c.svc.Put(r.Context(), req.queueName(), req.Payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, putResp{Seq: seq})
}

func (c *QueuesController) handleGet(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req nameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	it, ok, err := c.svc.Get(r.Context(), req.queueName())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !ok {
		writeJSON(w, getResp{})
		return
	}
	item := toItemJSON(it)
	writeJSON(w, getResp{Found: true, Item: &item})
}

func (c *QueuesController) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	st, err := c.svc.Status(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, toStatusJSON(st))
}

func (c *QueuesController) handleReset(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req nameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := c.svc.Reset(r.Context(), req.queueName()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeNoContent(w)
}

func (c *QueuesController) handleMaxQueue(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req maxQueueReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := c.svc.SetMaxQueue(r.Context(), req.queueName(), req.Max); err != nil {
		writeServiceError(w, err)
		return
	}
	writeNoContent(w)
}

func (c *QueuesController) handleView(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	seq, ok := parseUint(q.Get("seq"))
	if !ok {
		writeError(w, http.StatusBadRequest, "seq is required")
		return
	}
	it, err := c.svc.View(r.Context(), q.Get("name"), seq)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, toItemJSON(it))
}

// handleItems lists undelivered items. Query: name, from, limit, filter (CEL).
func (c *QueuesController) handleItems(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	from, _ := parseUint(q.Get("from"))
	items, err := c.svc.Items(r.Context(), q.Get("name"), queue.ItemsOptions{
		From:   from,
		Limit:  parseLimit(q.Get("limit")),
		Filter: q.Get("filter"),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]itemJSON, 0, len(items))
	for _, it := range items {
		out = append(out, toItemJSON(it))
	}
	writeJSON(w, map[string]any{"items": out})
}
