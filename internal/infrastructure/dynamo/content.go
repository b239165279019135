package dynamo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/multibrand-site/internal/domain"
)

// ContentRepo provides typed DynamoDB operations for the content table.
// PK: kind, SK: id.
type ContentRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewContentRepo(client *dynamodb.Client, tableName string) *ContentRepo {
	return &ContentRepo{client: client, tableName: tableName}
}

func (r *ContentRepo) Put(ctx context.Context, rec *domain.ContentRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal content record: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ContentRepo) Get(ctx context.Context, kind domain.Kind, recordID string) (*domain.ContentRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       contentKey(string(kind), recordID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("%s %s: %w", kind, recordID, domain.ErrNotFound)
	}
	var rec domain.ContentRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns every record of kind ordered by order, then id.
func (r *ContentRepo) List(ctx context.Context, kind domain.Kind) ([]domain.ContentRecord, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    aws.String("#kind = :kind"),
		ExpressionAttributeNames:  map[string]string{"#kind": attrKind},
		ExpressionAttributeValues: map[string]types.AttributeValue{":kind": &types.AttributeValueMemberS{Value: string(kind)}},
	})
	records := []domain.ContentRecord{}
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.ContentRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		records = append(records, page...)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Order != records[j].Order {
			return records[i].Order < records[j].Order
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

// MaxOrder returns the highest order among records of kind, or 0 when there are none.
func (r *ContentRepo) MaxOrder(ctx context.Context, kind domain.Kind) (int, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    aws.String("#kind = :kind"),
		ProjectionExpression:      aws.String("#order"),
		ExpressionAttributeNames:  map[string]string{"#kind": attrKind, "#order": attrOrder},
		ExpressionAttributeValues: map[string]types.AttributeValue{":kind": &types.AttributeValueMemberS{Value: string(kind)}},
	})
	highest := 0
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return 0, err
		}
		var rows []struct {
			Order int `dynamodbav:"order"`
		}
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &rows); err != nil {
			return 0, err
		}
		for _, row := range rows {
			if row.Order > highest {
				highest = row.Order
			}
		}
	}
	return highest, nil
}

// Update replaces the data document of an existing record.
func (r *ContentRepo) Update(ctx context.Context, kind domain.Kind, recordID string, data json.RawMessage, updatedAt time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		attrData:      []byte(data),
		attrUpdatedAt: updatedAt.UTC(),
	})
	if err != nil {
		return err
	}
	ue.Names["#pk"] = attrKind
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       contentKey(string(kind), recordID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("%s %s: %w", kind, recordID, domain.ErrNotFound)
	}
	return err
}

func (r *ContentRepo) Delete(ctx context.Context, kind domain.Kind, recordID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      contentKey(string(kind), recordID),
		ConditionExpression:      aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": attrKind},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("%s %s: %w", kind, recordID, domain.ErrNotFound)
	}
	return err
}
