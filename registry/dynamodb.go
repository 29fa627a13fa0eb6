package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DDBClient is the subset of the DynamoDB API the registry depends on.
// *dynamodb.Client satisfies it; tests substitute fakes.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DDBRegistry records runs in a DynamoDB table, using conditional writes
// for duplicate detection so concurrent sweeps coordinate without locks.
//
// Table schema:
//   - Partition key: dataset (string)
//   - Sort key: run_key (string) - "<dataset>/<code_length>/<checkpoint>"
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name spectral-runs \
//	  --attribute-definitions AttributeName=dataset,AttributeType=S AttributeName=run_key,AttributeType=S \
//	  --key-schema AttributeName=dataset,KeyType=HASH AttributeName=run_key,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBRegistry struct {
	client    DDBClient
	tableName string
}

// NewDDBRegistry creates a DynamoDB-backed registry.
func NewDDBRegistry(client DDBClient, tableName string) *DDBRegistry {
	return &DDBRegistry{
		client:    client,
		tableName: tableName,
	}
}

// Put records a run. A conditional put on the sort key maps "already
// exists" to ErrDuplicateRun.
func (r *DDBRegistry) Put(ctx context.Context, run Run) error {
	if err := run.validate(); err != nil {
		return err
	}

	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			"dataset":     &types.AttributeValueMemberS{Value: run.Dataset},
			"run_key":     &types.AttributeValueMemberS{Value: run.Key()},
			"code_length": &types.AttributeValueMemberN{Value: strconv.Itoa(run.CodeLength)},
			"map":         &types.AttributeValueMemberN{Value: strconv.FormatFloat(run.MAP, 'g', -1, 64)},
			"top_k":       &types.AttributeValueMemberN{Value: strconv.Itoa(run.TopK)},
			"seed":        &types.AttributeValueMemberN{Value: strconv.FormatInt(run.Seed, 10)},
			"checkpoint":  &types.AttributeValueMemberS{Value: run.Checkpoint},
			"created_at":  &types.AttributeValueMemberS{Value: run.CreatedAt.UTC().Format(time.RFC3339Nano)},
		},
		ConditionExpression: aws.String("attribute_not_exists(run_key)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return fmt.Errorf("%w: %s", ErrDuplicateRun, run.Key())
		}
		return fmt.Errorf("registry: put run %s: %w", run.Key(), err)
	}
	return nil
}

// List queries all runs of a dataset, ordered by creation time.
func (r *DDBRegistry) List(ctx context.Context, dataset string) ([]Run, error) {
	var runs []Run
	var startKey map[string]types.AttributeValue

	for {
		resp, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("dataset = :d"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":d": &types.AttributeValueMemberS{Value: dataset},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("registry: query %s: %w", dataset, err)
		}

		for _, item := range resp.Items {
			run, err := runFromItem(item)
			if err != nil {
				return nil, err
			}
			runs = append(runs, run)
		}

		if resp.LastEvaluatedKey == nil {
			break
		}
		startKey = resp.LastEvaluatedKey
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.Before(runs[j].CreatedAt) })
	return runs, nil
}

func runFromItem(item map[string]types.AttributeValue) (Run, error) {
	var run Run

	str := func(name string) (string, error) {
		attr, ok := item[name].(*types.AttributeValueMemberS)
		if !ok {
			return "", fmt.Errorf("registry: item missing string attribute %q", name)
		}
		return attr.Value, nil
	}
	num := func(name string) (string, error) {
		attr, ok := item[name].(*types.AttributeValueMemberN)
		if !ok {
			return "", fmt.Errorf("registry: item missing number attribute %q", name)
		}
		return attr.Value, nil
	}

	var err error
	if run.Dataset, err = str("dataset"); err != nil {
		return run, err
	}
	if run.Checkpoint, err = str("checkpoint"); err != nil {
		return run, err
	}

	raw, err := num("code_length")
	if err != nil {
		return run, err
	}
	if run.CodeLength, err = strconv.Atoi(raw); err != nil {
		return run, fmt.Errorf("registry: parse code_length: %w", err)
	}

	if raw, err = num("map"); err != nil {
		return run, err
	}
	if run.MAP, err = strconv.ParseFloat(raw, 64); err != nil {
		return run, fmt.Errorf("registry: parse map: %w", err)
	}

	if raw, err = num("top_k"); err != nil {
		return run, err
	}
	if run.TopK, err = strconv.Atoi(raw); err != nil {
		return run, fmt.Errorf("registry: parse top_k: %w", err)
	}

	if raw, err = num("seed"); err != nil {
		return run, err
	}
	if run.Seed, err = strconv.ParseInt(raw, 10, 64); err != nil {
		return run, fmt.Errorf("registry: parse seed: %w", err)
	}

	if raw, err = str("created_at"); err != nil {
		return run, err
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, raw); err != nil {
		return run, fmt.Errorf("registry: parse created_at: %w", err)
	}

	return run, nil
}
