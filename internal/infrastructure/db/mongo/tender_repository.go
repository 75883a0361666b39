package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
)

const collectionTenders = "tenders"

type TenderRepository struct {
	col *mongo.Collection
}

func NewTenderRepository(db *mongo.Database) *TenderRepository {
	return &TenderRepository{col: db.Collection(collectionTenders)}
}

func (r *TenderRepository) Get(ctx context.Context, id string) (*domain.Tender, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.Tender
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTenderNotFound
		}
		return nil, fmt.Errorf("find tender: %w", err)
	}
	return normalizeTender(&t), nil
}

func (r *TenderRepository) List(ctx context.Context) ([]domain.Tender, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "submission_date", Value: 1}, {Key: "tender_number", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list tenders: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]domain.Tender, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode tenders: %w", err)
	}
	for i := range out {
		normalizeTender(&out[i])
	}
	return out, nil
}

func (r *TenderRepository) Create(ctx context.Context, tender *domain.Tender) (*domain.Tender, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := *tender
	doc.ID = uuid.NewString()
	doc.BriefingDate = storedTime(doc.BriefingDate)
	doc.SubmissionDate = storedTime(doc.SubmissionDate)

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrTenderNumberTaken
		}
		return nil, fmt.Errorf("insert tender: %w", err)
	}
	return normalizeTender(&doc), nil
}

func (r *TenderRepository) Update(ctx context.Context, id string, patch domain.TenderPatch) (*domain.Tender, error) {
	set := tenderSet(patch)
	if len(set) == 0 {
		return r.Get(ctx, id)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t domain.Tender
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&t)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, domain.ErrTenderNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, domain.ErrTenderNumberTaken
		}
		return nil, fmt.Errorf("update tender: %w", err)
	}
	return normalizeTender(&t), nil
}

func (r *TenderRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete tender: %w", err)
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the tenders collection.
func (r *TenderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tender_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "submission_date", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// tenderSet maps the present fields of patch onto their document keys.
func tenderSet(patch domain.TenderPatch) bson.M {
	set := bson.M{}
	if patch.TenderNumber != nil {
		set["tender_number"] = *patch.TenderNumber
	}
	if patch.ClientName != nil {
		set["client_name"] = *patch.ClientName
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.BriefingDate != nil {
		set["briefing_date"] = storedTime(*patch.BriefingDate)
	}
	if patch.SubmissionDate != nil {
		set["submission_date"] = storedTime(*patch.SubmissionDate)
	}
	if patch.Venue != nil {
		set["venue"] = *patch.Venue
	}
	if patch.CompulsoryBriefing != nil {
		set["compulsory_briefing"] = *patch.CompulsoryBriefing
	}
	return set
}

// storedTime is t as BSON keeps it: UTC with millisecond precision.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func normalizeTender(t *domain.Tender) *domain.Tender {
	t.BriefingDate = t.BriefingDate.UTC()
	t.SubmissionDate = t.SubmissionDate.UTC()
	return t
}
