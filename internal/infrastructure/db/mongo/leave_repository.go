package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/opratem/schoolems/internal/core/domain"
)

const leaveCollection = "leave_requests"

// LeaveRepository implements ports.LeaveRepository on MongoDB.
type LeaveRepository struct {
	coll *mongo.Collection
}

func NewLeaveRepository(db *mongo.Database) *LeaveRepository {
	return &LeaveRepository{coll: db.Collection(leaveCollection)}
}

type mongoLeave struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	EmployeeID string             `bson:"employee_id"`
	LeaveType  string             `bson:"leave_type"`
	StartDate  time.Time          `bson:"start_date"`
	EndDate    time.Time          `bson:"end_date"`
	Reason     string             `bson:"reason"`
	Status     string             `bson:"status"`
	CreatedAt  int64              `bson:"created_at"`
	UpdatedAt  int64              `bson:"updated_at"`
}

func toMongoLeave(lr *domain.LeaveRequest) mongoLeave {
	return mongoLeave{
		EmployeeID: lr.EmployeeID,
		LeaveType:  string(lr.LeaveType),
		StartDate:  lr.StartDate.UTC(),
		EndDate:    lr.EndDate.UTC(),
		Reason:     lr.Reason,
		Status:     string(lr.Status),
		CreatedAt:  lr.CreatedAt.Unix(),
		UpdatedAt:  lr.UpdatedAt.Unix(),
	}
}

func (ml mongoLeave) toDomain() domain.LeaveRequest {
	return domain.LeaveRequest{
		ID:         ml.ID.Hex(),
		EmployeeID: ml.EmployeeID,
		LeaveType:  domain.LeaveType(ml.LeaveType),
		StartDate:  ml.StartDate.UTC(),
		EndDate:    ml.EndDate.UTC(),
		Reason:     ml.Reason,
		Status:     domain.LeaveStatus(ml.Status),
		CreatedAt:  unixToTime(ml.CreatedAt),
		UpdatedAt:  unixToTime(ml.UpdatedAt),
	}
}

func (r *LeaveRepository) Insert(ctx context.Context, lr *domain.LeaveRequest) (*domain.LeaveRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, toMongoLeave(lr))
	if err != nil {
		return nil, fmt.Errorf("insert leave request: %w", err)
	}

	created := *lr
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *LeaveRepository) Update(ctx context.Context, lr *domain.LeaveRequest) (*domain.LeaveRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(lr.ID)
	if err != nil {
		return nil, domain.ErrLeaveNotFound
	}

	doc := toMongoLeave(lr)
	doc.ID = oid

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": doc})
	if err != nil {
		return nil, fmt.Errorf("update leave request: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrLeaveNotFound
	}
	return lr, nil
}

func (r *LeaveRepository) FindByID(ctx context.Context, id string) (*domain.LeaveRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrLeaveNotFound
	}

	var ml mongoLeave
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&ml); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLeaveNotFound
		}
		return nil, fmt.Errorf("find leave request: %w", err)
	}

	lr := ml.toDomain()
	return &lr, nil
}

func (r *LeaveRepository) FindAll(ctx context.Context) ([]domain.LeaveRequest, error) {
	return r.find(ctx, bson.M{})
}

func (r *LeaveRepository) FindByEmployee(ctx context.Context, employeeID string) ([]domain.LeaveRequest, error) {
	return r.find(ctx, bson.M{"employee_id": employeeID})
}

func (r *LeaveRepository) find(ctx context.Context, filter bson.M) ([]domain.LeaveRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.LeaveRequest
	for cursor.Next(ctx) {
		var ml mongoLeave
		if err := cursor.Decode(&ml); err != nil {
			return nil, fmt.Errorf("decode leave request: %w", err)
		}
		out = append(out, ml.toDomain())
	}
	return out, cursor.Err()
}

func (r *LeaveRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrLeaveNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete leave request: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrLeaveNotFound
	}
	return nil
}

// DeleteByEmployee removes every request of one employee. Backs the explicit
// cascade when an employee record is deleted.
func (r *LeaveRepository) DeleteByEmployee(ctx context.Context, employeeID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.DeleteMany(ctx, bson.M{"employee_id": employeeID})
	if err != nil {
		return fmt.Errorf("delete leave requests for employee: %w", err)
	}
	return nil
}

// EnsureIndexes creates the employee_id lookup index.
func (r *LeaveRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "employee_id", Value: 1}},
	})
	return err
}
