package vector

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/embercloud/ragstore/internal/embedding"
)

// QdrantSearcher implements Searcher on a Qdrant collection. It is the
// opt-in ANN-backed ranking strategy; namespaces map to a payload
// filter within one collection, and item ids live in the payload since
// Qdrant point ids must be UUIDs.
type QdrantSearcher struct {
	provider   embedding.Provider
	conn       *grpc.ClientConn
	points     pb.PointsClient
	collection string
	logger     *slog.Logger
}

// NewQdrant creates a Qdrant-backed searcher. logger may be nil.
func NewQdrant(ctx context.Context, provider embedding.Provider, host string, port int, collection string, logger *slog.Logger) (*QdrantSearcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	return &QdrantSearcher{
		provider:   provider,
		conn:       conn,
		points:     pb.NewPointsClient(conn),
		collection: collection,
		logger:     logger,
	}, nil
}

func (s *QdrantSearcher) Upsert(ctx context.Context, namespace string, items []Item) (int, error) {
	if len(items) == 0 {
		return 0, ErrEmptyBatch
	}

	var points []*pb.PointStruct
	for _, item := range items {
		if strings.TrimSpace(item.Text) == "" {
			continue
		}
		id := ResolveID(item.ID, item.Text)

		vec, err := s.provider.Embed(ctx, item.Text)
		if err != nil {
			s.logger.Warn("embedding failed, skipping item",
				"namespace", namespace, "id", id, "error", err)
			continue
		}

		payload := map[string]*pb.Value{
			"namespace": {Kind: &pb.Value_StringValue{StringValue: namespace}},
			"id":        {Kind: &pb.Value_StringValue{StringValue: id}},
			"text":      {Kind: &pb.Value_StringValue{StringValue: item.Text}},
		}
		for k, v := range item.Metadata {
			payload["meta_"+k] = toValue(v)
		}

		points = append(points, &pb.PointStruct{
			Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: pointUUID(namespace, id)}},
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: vec}}},
			Payload: payload,
		})
	}

	if len(points) == 0 {
		return 0, nil
	}

	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant upsert: %w", err)
	}
	return len(points), nil
}

func (s *QdrantSearcher) Query(ctx context.Context, namespace, text string, topK int) ([]Result, error) {
	if topK <= 0 {
		return []Result{}, nil
	}

	vec, err := s.provider.Embed(ctx, text)
	if err != nil {
		return nil, &EmbedError{Err: err}
	}

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         vec,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
		Filter: &pb.Filter{
			Must: []*pb.Condition{{
				ConditionOneOf: &pb.Condition_Field{
					Field: &pb.FieldCondition{
						Key:   "namespace",
						Match: &pb.Match{MatchValue: &pb.Match_Keyword{Keyword: namespace}},
					},
				},
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	results := make([]Result, len(resp.Result))
	for i, pt := range resp.Result {
		results[i] = Result{
			ID:    pt.Payload["id"].GetStringValue(),
			Text:  pt.Payload["text"].GetStringValue(),
			Score: pt.Score,
		}
	}
	return results, nil
}

// Close releases the gRPC connection.
func (s *QdrantSearcher) Close() error {
	return s.conn.Close()
}

func toValue(v any) *pb.Value {
	switch t := v.(type) {
	case string:
		return &pb.Value{Kind: &pb.Value_StringValue{StringValue: t}}
	case bool:
		return &pb.Value{Kind: &pb.Value_BoolValue{BoolValue: t}}
	case float64:
		return &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: t}}
	case int:
		return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: int64(t)}}
	case int64:
		return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: t}}
	case nil:
		return &pb.Value{Kind: &pb.Value_NullValue{}}
	default:
		return &pb.Value{Kind: &pb.Value_StringValue{StringValue: fmt.Sprint(t)}}
	}
}

// pointUUID derives a stable UUID for a (namespace, id) pair, so
// re-upserting the same item overwrites the same point.
func pointUUID(namespace, id string) string {
	sum := sha256.Sum256([]byte(namespace + "/" + id))
	b := sum[:16]
	b[6] = (b[6] & 0x0f) | 0x40 // version 4 layout
	b[8] = (b[8] & 0x3f) | 0x80 // variant 10

	var out [36]byte
	hex.Encode(out[0:8], b[0:4])
	out[8] = '-'
	hex.Encode(out[9:13], b[4:6])
	out[13] = '-'
	hex.Encode(out[14:18], b[6:8])
	out[18] = '-'
	hex.Encode(out[19:23], b[8:10])
	out[23] = '-'
	hex.Encode(out[24:36], b[10:16])
	return string(out[:])
}
