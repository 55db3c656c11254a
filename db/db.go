// Package db stores compositions in DynamoDB, one item per composition
// keyed by a uuid.
package db

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/google/uuid"
	"github.com/jsphweid/noted/codec"
	"github.com/jsphweid/noted/model"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("composition not found")

// item is the stored shape of a codec.Document.
type item struct {
	PK           string   `dynamodbav:"PK"`
	Bpm          float64  `dynamodbav:"Bpm"`
	Meter        string   `dynamodbav:"Meter"`
	Notes        []string `dynamodbav:"Notes"`
	BpmChanges   []string `dynamodbav:"BpmChanges,omitempty"`
	MeterChanges []string `dynamodbav:"MeterChanges,omitempty"`
}

type Store struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

// New connects to DynamoDB in region. A non-empty endpoint points the
// client at a local instance.
func New(endpoint, region, table string) (*Store, error) {
	config := &aws.Config{Region: aws.String(region)}
	if endpoint != "" {
		config.Endpoint = aws.String(endpoint)
	}

	sess, err := session.NewSession(config)
	if err != nil {
		return nil, errors.Wrap(err, "Could not create a new DynamoDB session")
	}

	return NewWithClient(dynamodb.New(sess), table), nil
}

func NewWithClient(client dynamodbiface.DynamoDBAPI, table string) *Store {
	return &Store{client: client, table: table}
}

func toItem(id string, c model.Composition) (map[string]*dynamodb.AttributeValue, error) {
	doc := codec.NewDocument(c)
	return dynamodbattribute.MarshalMap(item{
		PK:           id,
		Bpm:          doc.Bpm,
		Meter:        doc.Meter,
		Notes:        doc.Notes,
		BpmChanges:   doc.BpmChanges,
		MeterChanges: doc.MeterChanges,
	})
}

func fromItem(av map[string]*dynamodb.AttributeValue) (model.Composition, error) {
	var it item
	if err := dynamodbattribute.UnmarshalMap(av, &it); err != nil {
		return model.Composition{}, err
	}
	return codec.Document{
		Bpm:          it.Bpm,
		Meter:        it.Meter,
		Notes:        it.Notes,
		BpmChanges:   it.BpmChanges,
		MeterChanges: it.MeterChanges,
	}.Composition()
}

// Put stores c under a new id.
func (s *Store) Put(ctx context.Context, c model.Composition) (string, error) {
	id := uuid.NewString()
	if err := s.Save(ctx, id, c); err != nil {
		return "", err
	}
	return id, nil
}

// Save replaces the composition stored under id.
func (s *Store) Save(ctx context.Context, id string, c model.Composition) error {
	av, err := toItem(id, c)
	if err != nil {
		return errors.Wrapf(err, "marshal composition %s", id)
	}

	_, err = s.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	return errors.Wrap(err, "Error from DynamoDB")
}

func (s *Store) Get(ctx context.Context, id string) (model.Composition, error) {
	key := make(map[string]*dynamodb.AttributeValue)
	key["PK"] = &dynamodb.AttributeValue{
		S: aws.String(id),
	}

	res, err := s.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       key,
	})
	if err != nil {
		return model.Composition{}, errors.Wrap(err, "Error from DynamoDB")
	}
	if len(res.Item) == 0 {
		return model.Composition{}, errors.Wrapf(ErrNotFound, "id %s", id)
	}

	return fromItem(res.Item)
}
