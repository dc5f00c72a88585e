// internal/repository/mongo/program_repo.go
package mongo

import (
	"alcyxob/hyrox-trainer/internal/domain"
	"alcyxob/hyrox-trainer/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const programCollectionName = "user_programs"

// programDocument is the stored shape of a UserProgram. The schedule is kept
// raw so an unreadable schedule does not make the whole program unreadable.
type programDocument struct {
	ID                string           `bson:"_id"`
	UserID            string           `bson:"userId"`
	ProgramID         string           `bson:"programId"`
	TemplateID        string           `bson:"templateId"`
	Name              string           `bson:"name"`
	StartDate         time.Time        `bson:"startDate"`
	RaceDate          *time.Time       `bson:"raceDate,omitempty"`
	FitnessLevel      string           `bson:"fitnessLevel,omitempty"`
	DaysPerWeek       int              `bson:"daysPerWeek,omitempty"`
	WeakStations      []domain.Station `bson:"weakStations,omitempty"`
	Schedule          bson.Raw         `bson:"schedule"`
	IntensityModifier float64          `bson:"intensityModifier"`
	CreatedAt         time.Time        `bson:"createdAt"`
	UpdatedAt         time.Time        `bson:"updatedAt"`
}

// mongoProgramRepository implements repository.ProgramRepository
type mongoProgramRepository struct {
	collection  *mongo.Collection
	completions *mongo.Collection
}

// NewMongoProgramRepository creates a new UserProgram repository. It owns the
// completion collection for cascading deletes.
func NewMongoProgramRepository(db *mongo.Database) repository.ProgramRepository {
	return &mongoProgramRepository{
		collection:  db.Collection(programCollectionName),
		completions: db.Collection(completionCollectionName),
	}
}

// GetByUserID retrieves the user's live program.
func (r *mongoProgramRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserProgram, error) {
	var doc programDocument
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// Create replaces any program of the user with the given one.
func (r *mongoProgramRepository) Create(ctx context.Context, program *domain.UserProgram) error {
	if program.UserID == "" || len(program.Schedule) == 0 {
		return errors.New("program requires userId and a schedule")
	}
	if err := r.deleteForUser(ctx, program.UserID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	program.ID = uuid.NewString()
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now
	program.ScheduleVersion = domain.ScheduleVersion

	doc, err := fromDomain(program)
	if err != nil {
		return err
	}
	if _, err = r.collection.InsertOne(ctx, doc); err != nil {
		return err
	}
	return nil
}

// DeleteByUserID removes the program and its ledger.
func (r *mongoProgramRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return r.deleteForUser(ctx, userID)
}

func (r *mongoProgramRepository) deleteForUser(ctx context.Context, userID string) error {
	var existing struct {
		ID string `bson:"_id"`
	}
	findOpts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}, findOpts).Decode(&existing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.ErrNotFound
		}
		return err
	}

	// Ledger first: a crash in between leaves a program without history
	// rather than orphaned completions.
	if _, err = r.completions.DeleteMany(ctx, bson.M{"userProgramId": existing.ID}); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrDeleteFailed, err)
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": existing.ID})
	if err != nil {
		return fmt.Errorf("%w: %w", repository.ErrDeleteFailed, err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateIntensityModifier stores a new modifier on the program.
func (r *mongoProgramRepository) UpdateIntensityModifier(ctx context.Context, programID string, modifier float64) error {
	update := bson.M{
		"$set": bson.M{
			"intensityModifier": modifier,
			"updatedAt":         time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": programID}, update)
	if err != nil {
		return fmt.Errorf("%w: %w", repository.ErrUpdateFailed, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureProgramIndexes creates necessary indexes. Call during startup.
func EnsureProgramIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// One live program per user
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create indexes for %s: %w", collection.Name(), err)
	}
	return nil
}

func fromDomain(p *domain.UserProgram) (programDocument, error) {
	schedule, err := bson.Marshal(domain.ScheduleEnvelope{Version: domain.ScheduleVersion, Weeks: p.Schedule})
	if err != nil {
		return programDocument{}, fmt.Errorf("marshal schedule: %w", err)
	}
	return programDocument{
		ID:                p.ID,
		UserID:            p.UserID,
		ProgramID:         p.ProgramID,
		TemplateID:        p.TemplateID,
		Name:              p.Name,
		StartDate:         p.StartDate,
		RaceDate:          p.RaceDate,
		FitnessLevel:      string(p.FitnessLevel),
		DaysPerWeek:       p.DaysPerWeek,
		WeakStations:      p.WeakStations,
		Schedule:          schedule,
		IntensityModifier: p.IntensityModifier,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}, nil
}

func (d programDocument) toDomain() *domain.UserProgram {
	p := &domain.UserProgram{
		ID:                d.ID,
		UserID:            d.UserID,
		ProgramID:         d.ProgramID,
		TemplateID:        d.TemplateID,
		Name:              d.Name,
		StartDate:         d.StartDate.UTC(),
		FitnessLevel:      domain.SkillLevel(d.FitnessLevel),
		DaysPerWeek:       d.DaysPerWeek,
		WeakStations:      d.WeakStations,
		IntensityModifier: d.IntensityModifier,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	if d.RaceDate != nil {
		race := d.RaceDate.UTC()
		p.RaceDate = &race
	}

	var env domain.ScheduleEnvelope
	err := bson.Unmarshal(d.Schedule, &env)
	if err == nil {
		err = domain.CheckScheduleVersion(env.Version)
	}
	if err == nil {
		err = domain.CheckScheduleShape(env.Weeks)
	}
	if err != nil {
		p.ScheduleDegraded = true
		p.ScheduleErr = fmt.Errorf("%w: %w", repository.ErrCorruptSchedule, err)
		return p
	}
	p.Schedule = env.Weeks
	p.ScheduleVersion = env.Version
	return p
}
