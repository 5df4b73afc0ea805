package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rzbill/httpmq/internal/queue"
	queuesvc "github.com/rzbill/httpmq/internal/services/queues"
	logpkg "github.com/rzbill/httpmq/pkg/log"
)

// Reply bodies of the text protocol.
const (
	replyPutOK          = "HTTPMQ_PUT_OK"
	replyPutEnd         = "HTTPMQ_PUT_END"
	replyPutNoData      = "HTTPMQ_PUT_NO_DATA"
	replyPutError       = "HTTPMQ_PUT_ERROR"
	replyGetEnd         = "HTTPMQ_GET_END"
	replyGetError       = "HTTPMQ_GET_ERROR"
	replyResetOK        = "HTTPMQ_RESET_OK"
	replyResetError     = "HTTPMQ_RESET_ERROR"
	replyMaxQueueOK     = "HTTPMQ_MAXQUEUE_OK"
	replyMaxQueueCancel = "HTTPMQ_MAXQUEUE_CANCLE" // sic; clients match this spelling
	replyError          = "HTTPMQ_ERROR"
	replyInvalidOpt     = "invalid opt"
)

// PosHeader carries the sequence of a put or get item.
const PosHeader = "Pos"

// ProtocolController implements the classic httpmq query protocol on "/":
//
//	GET /?name=q&opt=put&data=...      POST /?name=q&opt=put  (body is data)
//	GET /?name=q&opt=get|status|status_json|reset
//	GET /?name=q&opt=view&pos=N
//	GET /?name=q&opt=maxqueue&num=N
//
// Protocol outcomes are reported in the body with 200; only malformed
// requests, timeouts and store failures change the status code.
type ProtocolController struct {
	svc        *queuesvc.Service
	logger     logpkg.Logger
	payloadMax int
}

// NewProtocolController creates the text protocol controller.
func NewProtocolController(svc *queuesvc.Service, logger logpkg.Logger, payloadMax int) *ProtocolController {
	return &ProtocolController{svc: svc, logger: logger.WithComponent("protocol"), payloadMax: payloadMax}
}

// RegisterRoutes registers the protocol on "/".
func (c *ProtocolController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", c.handle)
}

func (c *ProtocolController) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !requireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	q := r.URL.Query()
	name := q.Get("name")
	if name == "" {
		writeText(w, http.StatusBadRequest, replyError)
		return
	}

	switch q.Get("opt") {
	case "put":
		c.put(w, r, name)
	case "get":
		c.get(w, r, name)
	case "status":
		c.status(w, r, name)
	case "status_json":
		c.statusJSON(w, r, name)
	case "view":
		c.view(w, r, name)
	case "reset":
		c.reset(w, r, name)
	case "maxqueue":
		c.maxQueue(w, r, name)
	default:
		writeText(w, http.StatusOK, replyInvalidOpt)
	}
}

func (c *ProtocolController) put(w http.ResponseWriter, r *http.Request, name string) {
	data := []byte(r.URL.Query().Get("data"))
	if len(data) == 0 && r.Method == http.MethodPost && r.Body != nil {
		limit := int64(c.payloadMax)
		if limit <= 0 {
			limit = 1 << 20
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
		if err != nil {
			writeText(w, http.StatusBadRequest, replyPutError)
			return
		}
		data = body
	}
	if len(data) == 0 {
		writeText(w, http.StatusOK, replyPutNoData)
		return
	}

	seq, err := c.svc.Put(r.Context(), name, data)
	switch {
	case err == nil:
		w.Header().Set(PosHeader, strconv.FormatUint(seq, 10))
		writeText(w, http.StatusOK, replyPutOK)
	case errors.Is(err, queue.ErrQueueFull), errors.Is(err, queue.ErrSequenceOverflow):
		writeText(w, http.StatusOK, replyPutEnd)
	default:
		c.fail(w, r, err, replyPutError)
	}
}

func (c *ProtocolController) get(w http.ResponseWriter, r *http.Request, name string) {
	it, ok, err := c.svc.Get(r.Context(), name)
	switch {
	case err != nil:
		c.fail(w, r, err, replyGetError)
	case !ok:
		writeText(w, http.StatusOK, replyGetEnd)
	default:
		w.Header().Set(PosHeader, strconv.FormatUint(it.Seq, 10))
		writeText(w, http.StatusOK, string(it.Payload))
	}
}

func (c *ProtocolController) status(w http.ResponseWriter, r *http.Request, name string) {
	st, err := c.svc.Status(r.Context(), name)
	if err != nil {
		c.fail(w, r, err, replyError)
		return
	}
	writeText(w, http.StatusOK, fmt.Sprintf(
		"HTTP Simple Queue Service\n"+
			"------------------------------\n"+
			"Queue Name: %s\n"+
			"Maximum number of queues: %d\n"+
			"Put position of queue (1st lap): %d\n"+
			"Get position of queue (1st lap): %d\n"+
			"Number of unread queue: %d\n",
		st.Name, st.MaxQueue, st.Write, st.Read, st.Depth))
}

func (c *ProtocolController) statusJSON(w http.ResponseWriter, r *http.Request, name string) {
	st, err := c.svc.Status(r.Context(), name)
	if err != nil {
		c.fail(w, r, err, replyError)
		return
	}
	writeJSON(w, legacyStatusJSON{
		Name:     st.Name,
		MaxQueue: st.MaxQueue,
		PutPos:   st.Write,
		PutLap:   1,
		GetPos:   st.Read,
		GetLap:   1,
		Unread:   st.Depth,
	})
}

func (c *ProtocolController) view(w http.ResponseWriter, r *http.Request, name string) {
	pos, ok := parseUint(r.URL.Query().Get("pos"))
	if !ok {
		writeText(w, http.StatusBadRequest, replyError)
		return
	}
	it, err := c.svc.View(r.Context(), name, pos)
	if errors.Is(err, queue.ErrPositionOutOfRange) {
		writeText(w, http.StatusOK, replyError)
		return
	}
	if err != nil {
		c.fail(w, r, err, replyError)
		return
	}
	w.Header().Set(PosHeader, strconv.FormatUint(it.Seq, 10))
	writeText(w, http.StatusOK, string(it.Payload))
}

func (c *ProtocolController) reset(w http.ResponseWriter, r *http.Request, name string) {
	if err := c.svc.Reset(r.Context(), name); err != nil {
		c.fail(w, r, err, replyResetError)
		return
	}
	writeText(w, http.StatusOK, replyResetOK)
}

func (c *ProtocolController) maxQueue(w http.ResponseWriter, r *http.Request, name string) {
	num, ok := parseUint(r.URL.Query().Get("num"))
	if !ok {
		writeText(w, http.StatusOK, replyMaxQueueCancel)
		return
	}
	err := c.svc.SetMaxQueue(r.Context(), name, num)
	switch {
	case err == nil:
		writeText(w, http.StatusOK, replyMaxQueueOK)
	case errors.Is(err, queue.ErrInvalidMaxQueue):
		writeText(w, http.StatusOK, replyMaxQueueCancel)
	default:
		c.fail(w, r, err, replyError)
	}
}

// fail writes reply with the status mapped from err. Invalid names always
// answer HTTPMQ_ERROR.
func (c *ProtocolController) fail(w http.ResponseWriter, r *http.Request, err error, reply string) {
	status := statusFromError(err)
	switch {
	case errors.Is(err, queue.ErrInvalidQueueName):
		reply = replyError
	case status == http.StatusRequestTimeout:
		reply = "request timed out"
	case status >= http.StatusInternalServerError:
		c.logger.WithContext(r.Context()).Error("protocol request failed", logpkg.Err(err))
	}
	writeText(w, status, reply)
}
