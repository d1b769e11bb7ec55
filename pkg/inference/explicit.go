package inference

import (
	"github.com/teamtrace/relato/pkg/types"
)

// actorRelationTypes maps actor role fields to the relation type emitted
// for them. Direction is object → actor.
var actorRelationTypes = map[string]types.RelationType{
	types.RoleCreatedBy: types.RelationCreatedBy,
	types.RoleUpdatedBy: types.RelationUpdatedBy,
	types.RoleAssignee:  types.RelationAssignee,
}

// ExtractExplicit emits relations derivable directly from structured
// fields, all with confidence 1.0 and source explicit:
//
//   - created_by/updated_by/assignee actors: object → actor, typed by the
//     field name.
//   - participants: actor → object, type participated_in.
//   - cross-object references in the object's relations map: direct edges
//     typed by the relation name.
//   - objects sharing a project_id: one project_related edge per unordered
//     pair within the project.
//
// Extraction is deterministic and applies no thresholds.
func (inf *Inferrer) ExtractExplicit(objects []*types.CanonicalObject) []types.Relation {
	var relations []types.Relation
	byProject := make(map[string][]*types.CanonicalObject)

	for _, obj := range objects {
		relations = append(relations, extractActorRelations(obj)...)
		relations = append(relations, extractReferenceRelations(obj)...)

		if projectID := obj.ProjectID(); projectID != "" {
			byProject[projectID] = append(byProject[projectID], obj)
		}
	}

	for _, members := range byProject {
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				if members[i].ID == members[j].ID {
					continue
				}
				relations = append(relations, types.Relation{
					FromID:     members[i].ID,
					ToID:       members[j].ID,
					Type:       types.RelationProjectRelated,
					Source:     types.SourceExplicit,
					Confidence: 1.0,
				})
			}
		}
	}

	return relations
}

// extractActorRelations emits edges for actor role fields.
func extractActorRelations(obj *types.CanonicalObject) []types.Relation {
	var relations []types.Relation

	for role, relType := range actorRelationTypes {
		for _, actor := range obj.Actors[role] {
			if actor == "" {
				continue
			}
			relations = append(relations, types.Relation{
				FromID:     obj.ID,
				ToID:       actor,
				Type:       relType,
				Source:     types.SourceExplicit,
				Confidence: 1.0,
			})
		}
	}

	// Participants point at the object, not the other way around.
	for _, actor := range obj.Actors[types.RoleParticipants] {
		if actor == "" {
			continue
		}
		relations = append(relations, types.Relation{
			FromID:     actor,
			ToID:       obj.ID,
			Type:       types.RelationParticipatedIn,
			Source:     types.SourceExplicit,
			Confidence: 1.0,
		})
	}

	return relations
}

// extractReferenceRelations emits edges for cross-object references
// already present in the object's relations map (resulted_in_issue,
// validated_by, ...).
func extractReferenceRelations(obj *types.CanonicalObject) []types.Relation {
	var relations []types.Relation

	for name, targets := range obj.Relations {
		for _, target := range targets {
			if target == "" {
				continue
			}
			relations = append(relations, types.Relation{
				FromID:     obj.ID,
				ToID:       target,
				Type:       types.RelationType(name),
				Source:     types.SourceExplicit,
				Confidence: 1.0,
			})
		}
	}

	return relations
}
