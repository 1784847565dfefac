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

// ProblemSession is a generated word problem and its correct answer.
type ProblemSession struct {
	ent.Schema
}

func (ProblemSession) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "problem_sessions"},
	}
}

func (ProblemSession) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable().
			Comment("UUID assigned on creation"),
		field.Text("problem_text").
			Immutable(),
		field.Float("correct_answer").
			Immutable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

func (ProblemSession) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("submissions", ProblemSubmission.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

func (ProblemSession) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("created_at"),
	}
}
