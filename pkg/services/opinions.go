package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/civicsynth/deliberation-engine/pkg/models"
	"github.com/civicsynth/deliberation-engine/pkg/repositories"
)

// OpinionService serves read paths over extracted problems and solutions.
type OpinionService struct {
	problems  repositories.ProblemRepository
	solutions repositories.SolutionRepository
}

// NewOpinionService creates a new OpinionService.
func NewOpinionService(problems repositories.ProblemRepository, solutions repositories.SolutionRepository) *OpinionService {
	return &OpinionService{problems: problems, solutions: solutions}
}

// GetProblem retrieves a problem by id.
func (s *OpinionService) GetProblem(ctx context.Context, id uuid.UUID) (*models.Problem, error) {
	return s.problems.GetByID(ctx, id)
}

// GetSolution retrieves a solution by id.
func (s *OpinionService) GetSolution(ctx context.Context, id uuid.UUID) (*models.Solution, error) {
	return s.solutions.GetByID(ctx, id)
}

// ListProblems returns a theme's problems, newest first.
func (s *OpinionService) ListProblems(ctx context.Context, themeID uuid.UUID) ([]*models.Problem, error) {
	return s.problems.ListByTheme(ctx, themeID)
}

// ListSolutions returns a theme's solutions, newest first.
func (s *OpinionService) ListSolutions(ctx context.Context, themeID uuid.UUID) ([]*models.Solution, error) {
	return s.solutions.ListByTheme(ctx, themeID)
}
