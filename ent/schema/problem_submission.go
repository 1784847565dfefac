package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ProblemSubmission is one graded answer to a ProblemSession.
type ProblemSubmission struct {
	ent.Schema
}

func (ProblemSubmission) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "problem_submissions"},
	}
}

func (ProblemSubmission) Fields() []ent.Field {
	return []ent.Field{
		field.Float("user_answer"),
		field.Bool("is_correct"),
		field.Text("feedback_text"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.String("session_id"),
	}
}

func (ProblemSubmission) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("session", ProblemSession.Type).
			Ref("submissions").
			Field("session_id").
			Unique().
			Required(),
	}
}

func (ProblemSubmission) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
	}
}
