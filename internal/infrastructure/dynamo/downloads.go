package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/multibrand-site/internal/domain"
)

const (
	activeFilter = "#used = :false AND #exp > :now"
	staleFilter  = "#used = :true OR #exp < :now"
)

// DownloadRepo provides typed DynamoDB operations for the download_requests table.
// PK: id. The table is capped at a few dozen rows, so lookups scan it.
type DownloadRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewDownloadRepo(client *dynamodb.Client, tableName string) *DownloadRepo {
	return &DownloadRepo{client: client, tableName: tableName}
}

func (r *DownloadRepo) Put(ctx context.Context, d *domain.DownloadRequest) error {
	item, err := attributevalue.MarshalMap(d)
	if err != nil {
		return fmt.Errorf("marshal download request: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *DownloadRepo) Delete(ctx context.Context, requestID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(attrID, requestID),
	})
	return err
}

// Count returns the number of rows in the table. The table is capped at a few dozen rows,
// so a COUNT scan is cheap.
func (r *DownloadRepo) Count(ctx context.Context) (int, error) {
	return r.count(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Select:    types.SelectCount,
	})
}

// CountActive returns the number of unused, unexpired rows at now.
func (r *DownloadRepo) CountActive(ctx context.Context, now time.Time) (int, error) {
	return r.count(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		Select:                    types.SelectCount,
		FilterExpression:          aws.String(activeFilter),
		ExpressionAttributeNames:  flagNames(),
		ExpressionAttributeValues: map[string]types.AttributeValue{":false": boolAttr(false), ":now": numAttr(now.Unix())},
	})
}

func (r *DownloadRepo) count(ctx context.Context, input *dynamodb.ScanInput) (int, error) {
	total := 0
	p := dynamodb.NewScanPaginator(r.client, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return 0, err
		}
		total += int(out.Count)
	}
	return total, nil
}

// Redeem marks the oldest active request carrying pin as used. Candidates come from a
// strongly consistent scan so a PIN is redeemable as soon as Put returns; each one is then
// flipped with a conditional update, so two concurrent redemptions cannot both succeed.
// Returns domain.ErrNotFound when no row could be claimed.
func (r *DownloadRepo) Redeem(ctx context.Context, pin string, now time.Time) (*domain.DownloadRequest, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		ConsistentRead:           aws.Bool(true),
		FilterExpression:         aws.String("#pin = :pin AND " + activeFilter),
		ExpressionAttributeNames: map[string]string{"#pin": attrPIN, "#used": attrUsed, "#exp": attrExpiresAt},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pin":   &types.AttributeValueMemberS{Value: pin},
			":false": boolAttr(false),
			":now":   numAttr(now.Unix()),
		},
	})
	var candidates []domain.DownloadRequest
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.DownloadRequest
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		candidates = append(candidates, page...)
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	for _, c := range candidates {
		upd, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                aws.String(r.tableName),
			Key:                      strKey(attrID, c.ID),
			UpdateExpression:         aws.String("SET #used = :true"),
			ConditionExpression:      aws.String(activeFilter),
			ExpressionAttributeNames: flagNames(),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":true":  boolAttr(true),
				":false": boolAttr(false),
				":now":   numAttr(now.Unix()),
			},
			ReturnValues: types.ReturnValueAllNew,
		})
		if err != nil {
			if isConditionFailed(err) {
				continue // claimed or expired in between
			}
			return nil, err
		}
		var d domain.DownloadRequest
		if err := attributevalue.UnmarshalMap(upd.Attributes, &d); err != nil {
			return nil, err
		}
		return &d, nil
	}
	return nil, fmt.Errorf("download request not found: %w", domain.ErrNotFound)
}

// DeleteStale removes every used or expired row and reports how many it removed.
// Deletes are conditional on the row still being stale, so concurrent cleanups never double count.
func (r *DownloadRepo) DeleteStale(ctx context.Context, now time.Time) (int, error) {
	values := map[string]types.AttributeValue{":true": boolAttr(true), ":now": numAttr(now.Unix())}
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          aws.String(staleFilter),
		ProjectionExpression:      aws.String("#id"),
		ExpressionAttributeNames:  map[string]string{"#id": attrID, "#used": attrUsed, "#exp": attrExpiresAt},
		ExpressionAttributeValues: values,
	})
	deleted := 0
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return deleted, err
		}
		for _, item := range out.Items {
			_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName:                 aws.String(r.tableName),
				Key:                       map[string]types.AttributeValue{attrID: item[attrID]},
				ConditionExpression:       aws.String(staleFilter),
				ExpressionAttributeNames:  flagNames(),
				ExpressionAttributeValues: values,
			})
			if err != nil {
				if isConditionFailed(err) {
					continue
				}
				return deleted, err
			}
			deleted++
		}
	}
	return deleted, nil
}

func flagNames() map[string]string {
	return map[string]string{"#used": attrUsed, "#exp": attrExpiresAt}
}
