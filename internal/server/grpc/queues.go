package grpcserver

import (
	"context"

	httpmqv1 "github.com/rzbill/httpmq/api/httpmq/v1"
	"github.com/rzbill/httpmq/internal/queue"
	queuesvc "github.com/rzbill/httpmq/internal/services/queues"
)

type queuesSvc struct {
	httpmqv1.UnimplementedQueuesServer
	svc *queuesvc.Service
}

func (s *queuesSvc) Put(ctx context.Context, req *httpmqv1.PutRequest) (*httpmqv1.PutResponse, error) {
	seq, err := s.svc.Put(ctx, string(req.Name), req.Payload)
	if err != nil {
		return nil, toStatus(err)
	}
	return &httpmqv1.PutResponse{Seq: seq}, nil
}

func (s *queuesSvc) Get(ctx context.Context, req *httpmqv1.GetRequest) (*httpmqv1.GetResponse, error) {
	it, ok, err := s.svc.Get(ctx, string(req.Name))
	if err != nil {
		return nil, toStatus(err)
	}
	if !ok {
		return &httpmqv1.GetResponse{}, nil
	}
	item := toItem(it)
	return &httpmqv1.GetResponse{Found: true, Item: &item}, nil
}

func (s *queuesSvc) Status(ctx context.Context, req *httpmqv1.StatusRequest) (*httpmqv1.QueueStatus, error) {
	st, err := s.svc.Status(ctx, string(req.Name))
	if err != nil {
		return nil, toStatus(err)
	}
	out := toQueueStatus(st)
	return &out, nil
}

func (s *queuesSvc) Reset(ctx context.Context, req *httpmqv1.ResetRequest) (*httpmqv1.ResetResponse, error) {
	if err := s.svc.Reset(ctx, string(req.Name)); err != nil {
		return nil, toStatus(err)
	}
	return &httpmqv1.ResetResponse{}, nil
}

func (s *queuesSvc) SetMaxQueue(ctx context.Context, req *httpmqv1.SetMaxQueueRequest) (*httpmqv1.SetMaxQueueResponse, error) {
	if err := s.svc.SetMaxQueue(ctx, string(req.Name), req.Max); err != nil {
		return nil, toStatus(err)
	}
	return &httpmqv1.SetMaxQueueResponse{}, nil
}

func (s *queuesSvc) View(ctx context.Context, req *httpmqv1.ViewRequest) (*httpmqv1.Item, error) {
	it, err := s.svc.View(ctx, string(req.Name), req.Seq)
	if err != nil {
		return nil, toStatus(err)
	}
	out := toItem(it)
	return &out, nil
}

func (s *queuesSvc) List(ctx context.Context, _ *httpmqv1.ListRequest) (*httpmqv1.ListResponse, error) {
	sts, err := s.svc.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	out := &httpmqv1.ListResponse{Queues: make([]httpmqv1.QueueStatus, 0, len(sts))}
	for _, st := range sts {
		out.Queues = append(out.Queues, toQueueStatus(st))
	}
	return out, nil
}

func (s *queuesSvc) Items(ctx context.Context, req *httpmqv1.ItemsRequest) (*httpmqv1.ItemsResponse, error) {
	items, err := s.svc.Items(ctx, string(req.Name), queue.ItemsOptions{From: req.From, Limit: int(req.Limit), Filter: req.Filter})
	if err != nil {
		return nil, toStatus(err)
	}
	out := &httpmqv1.ItemsResponse{Items: make([]httpmqv1.Item, 0, len(items))}
	for _, it := range items {
		out.Items = append(out.Items, toItem(it))
	}
	return out, nil
}

func toItem(it queue.Item) httpmqv1.Item {
	return httpmqv1.Item{Seq: it.Seq, Payload: it.Payload, EnqueuedAtMs: it.EnqueuedAt.UnixMilli()}
}

func toQueueStatus(st queue.Status) httpmqv1.QueueStatus {
	return httpmqv1.QueueStatus{Name: httpmqv1.QueueName(st.Name), Write: st.Write, Read: st.Read, Depth: st.Depth, MaxQueue: st.MaxQueue}
}
