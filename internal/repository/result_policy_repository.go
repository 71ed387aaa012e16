package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pwannenmacher/criteria-settings/internal/models"
)

var ErrResultPolicyNotFound = errors.New("result policy not found")

// ResultPolicyRepository handles the one-to-one grading policy of a version
type ResultPolicyRepository struct {
	db DBTX
}

// NewResultPolicyRepository creates a new result policy repository
func NewResultPolicyRepository(db DBTX) *ResultPolicyRepository {
	return &ResultPolicyRepository{db: db}
}

// GetByVersion retrieves the policy of a version
func (r *ResultPolicyRepository) GetByVersion(ctx context.Context, versionID uint) (*models.ResultPolicy, error) {
	query := `
		SELECT version_id, grading_rule, action_grades, explanation_grades
		FROM result_policies
		WHERE version_id = $1
	`
	var gradingRule, actionGrades, explanationGrades []byte
	policy := &models.ResultPolicy{}
	err := r.db.QueryRowContext(ctx, query, versionID).Scan(&policy.VersionID, &gradingRule, &actionGrades, &explanationGrades)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResultPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result policy: %w", err)
	}
	policy.GradingRule = json.RawMessage(gradingRule)
	policy.ActionGrades = json.RawMessage(actionGrades)
	policy.ExplanationGrades = json.RawMessage(explanationGrades)
	return policy, nil
}

// Upsert creates or replaces the policy of a version
func (r *ResultPolicyRepository) Upsert(ctx context.Context, policy *models.ResultPolicy) error {
	query := `
		INSERT INTO result_policies (version_id, grading_rule, action_grades, explanation_grades)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (version_id) DO UPDATE
		SET grading_rule = EXCLUDED.grading_rule,
		    action_grades = EXCLUDED.action_grades,
		    explanation_grades = EXCLUDED.explanation_grades
	`
	_, err := r.db.ExecContext(ctx, query,
		policy.VersionID,
		nullJSON(policy.GradingRule),
		nullJSON(policy.ActionGrades),
		nullJSON(policy.ExplanationGrades),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert result policy: %w", err)
	}
	return nil
}

// nullJSON maps an empty document to SQL NULL
func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
