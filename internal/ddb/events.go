// Package ddb decodes DynamoDB stream images of university records.
package ddb

import (
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/letmevibethatforyou/unicatalog"
)

// UniversityKind is the sort key value of university records.
const UniversityKind = "university"

// OperationType represents the type of DynamoDB operation
type OperationType string

const (
	OperationTypeInsert OperationType = "INSERT"
	OperationTypeModify OperationType = "MODIFY"
	OperationTypeRemove OperationType = "REMOVE"
)

// Record is a university row as stored in the table.
type Record struct {
	ID     string            `dynamodbav:"pk"`     // PK field, a ksuid
	Kind   string            `dynamodbav:"sk"`     // SK field
	Object unicatalog.Detail `dynamodbav:"object"` // university with benchmarks
}

// NewRecord builds the table row for detail.
func NewRecord(id string, detail unicatalog.Detail) Record {
	detail.ID = id
	return Record{
		ID:     id,
		Kind:   UniversityKind,
		Object: detail,
	}
}

// UnmarshalRecord converts a stream image into a Record.
func UnmarshalRecord(image map[string]events.DynamoDBAttributeValue) (Record, error) {
	item, err := FromStreamImage(image)
	if err != nil {
		return Record{}, err
	}

	var record Record
	if err := attributevalue.UnmarshalMap(item, &record); err != nil {
		return Record{}, err
	}
	if record.Object.ID == "" {
		record.Object.ID = record.ID
	}
	return record, nil
}

// FromStreamImage converts the Lambda event attribute representation into
// the SDK's, so attributevalue can decode it.
func FromStreamImage(image map[string]events.DynamoDBAttributeValue) (map[string]types.AttributeValue, error) {
	out := make(map[string]types.AttributeValue, len(image))
	for k, v := range image {
		av, err := fromStreamValue(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		out[k] = av
	}
	return out, nil
}

func fromStreamValue(v events.DynamoDBAttributeValue) (types.AttributeValue, error) {
	switch v.DataType() {
	case events.DataTypeString:
		return &types.AttributeValueMemberS{Value: v.String()}, nil
	case events.DataTypeNumber:
		return &types.AttributeValueMemberN{Value: v.Number()}, nil
	case events.DataTypeBoolean:
		return &types.AttributeValueMemberBOOL{Value: v.Boolean()}, nil
	case events.DataTypeNull:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case events.DataTypeBinary:
		return &types.AttributeValueMemberB{Value: v.Binary()}, nil
	case events.DataTypeStringSet:
		return &types.AttributeValueMemberSS{Value: v.StringSet()}, nil
	case events.DataTypeNumberSet:
		return &types.AttributeValueMemberNS{Value: v.NumberSet()}, nil
	case events.DataTypeBinarySet:
		return &types.AttributeValueMemberBS{Value: v.BinarySet()}, nil
	case events.DataTypeList:
		list := v.List()
		out := make([]types.AttributeValue, 0, len(list))
		for i, item := range list {
			av, err := fromStreamValue(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out = append(out, av)
		}
		return &types.AttributeValueMemberL{Value: out}, nil
	case events.DataTypeMap:
		m, err := FromStreamImage(v.Map())
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	default:
		return nil, fmt.Errorf("unsupported attribute data type %v", v.DataType())
	}
}
