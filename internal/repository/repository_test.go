package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"transcriptions/internal/config"
	"transcriptions/internal/logger"
	"transcriptions/internal/model"
)

// exerciseRepository runs the behaviour every backend must share.
func exerciseRepository(t *testing.T, repo TranscriptionRepository) {
	t.Helper()
	ctx := context.Background()

	if _, err := repo.Get(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	rec := &model.Transcription{ID: 1, Data: `{"transcript":"Hello"}`}
	if err := repo.CreateIfAbsent(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	item, err := repo.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := *item[model.AttrID].N; got != "1" {
		t.Errorf("expected id N=1, got %q", got)
	}
	if got := *item[model.AttrData].S; got != rec.Data {
		t.Errorf("expected data %q, got %q", rec.Data, got)
	}

	err = repo.CreateIfAbsent(ctx, &model.Transcription{ID: 1, Data: "other"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists on second create, got %v", err)
	}
	item, _ = repo.Get(ctx, 1)
	if got := *item[model.AttrData].S; got != rec.Data {
		t.Errorf("second create must not overwrite, got %q", got)
	}

	if err := repo.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, 999); err != nil {
		t.Errorf("deleting a missing id should succeed, got %v", err)
	}
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository())
}

func TestRedisRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := NewRedisClient(config.RedisConfig{Addr: mr.Addr()})
	defer rdb.Close()

	repo := NewRedisRepository(rdb, logger.Nop())
	exerciseRepository(t, repo)
}

func TestRedisRepositoryKeyLayout(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := NewRedisClient(config.RedisConfig{Addr: mr.Addr()})
	defer rdb.Close()

	repo := NewRedisRepository(rdb, logger.Nop())
	if err := repo.CreateIfAbsent(context.Background(), &model.Transcription{ID: 5, Data: "x"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	raw, err := mr.Get("transcriptions:5")
	if err != nil {
		t.Fatalf("expected key transcriptions:5: %v", err)
	}
	if raw != `{"data":{"S":"x"},"id":{"N":"5"}}` {
		t.Errorf("unexpected stored value %s", raw)
	}
}

// fakeDynamo is an in-memory stand-in for the DynamoDB client.
type fakeDynamo struct {
	mu        sync.Mutex
	items     map[string]map[string]types.AttributeValue
	deleteErr error
	tables    []string
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func keyOf(key map[string]types.AttributeValue) string {
	return key[model.AttrID].(*types.AttributeValueMemberN).Value
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables = append(f.tables, aws.ToString(in.TableName))
	return &dynamodb.GetItemOutput{Item: f.items[keyOf(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables = append(f.tables, aws.ToString(in.TableName))
	k := keyOf(in.Item)
	if _, exists := f.items[k]; exists && in.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	f.items[k] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables = append(f.tables, aws.ToString(in.TableName))
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	delete(f.items, keyOf(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestDynamoDBRepository(t *testing.T) {
	fake := newFakeDynamo()
	exerciseRepository(t, NewDynamoDBRepository(fake, "transcriptions", logger.Nop()))

	for _, table := range fake.tables {
		if table != "transcriptions" {
			t.Errorf("expected every call against table 'transcriptions', got %q", table)
		}
	}
}

func TestDynamoDBRepositoryDeleteFailure(t *testing.T) {
	fake := newFakeDynamo()
	fake.deleteErr = errors.New("throttled")
	repo := NewDynamoDBRepository(fake, "transcriptions", logger.Nop())

	err := repo.Delete(context.Background(), 1)
	if err == nil {
		t.Fatal("expected delete error")
	}
	if !errors.Is(err, fake.deleteErr) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
}

func TestFromAttributeValuesSkipsOtherTypes(t *testing.T) {
	item := fromAttributeValues(map[string]types.AttributeValue{
		"id":   &types.AttributeValueMemberN{Value: "3"},
		"data": &types.AttributeValueMemberS{Value: "d"},
		"flag": &types.AttributeValueMemberBOOL{Value: true},
	})
	if len(item) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(item))
	}
	if *item["id"].N != "3" || *item["data"].S != "d" {
		t.Errorf("unexpected item %+v", item)
	}
}
