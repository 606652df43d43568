package resolver

import (
	"strings"

	"strait/internal/ir"
)

// SpecializationPlan records how a generic declaration is emitted. Simple
// parametric emission is preferred because the target supports runtime
// generics; a declaration only needs a synthesized closed type when a
// structural type parameter carries a default that must be materialized.
type SpecializationPlan struct {
	// Parametric is true when the declaration itself emits with its type
	// parameters intact.
	Parametric bool
	// Synthesized lists closed companion types to emit alongside the
	// parametric declaration.
	Synthesized []SynthesizedSpec
}

// SynthesizedSpec is one closed companion type.
type SynthesizedSpec struct {
	// Name is the deterministic name of the closed type, derived from the
	// declaration and parameter names rather than a counter.
	Name string
	// Param is the defaulted type parameter being closed over.
	Param string
	// Default is the materialized default type.
	Default *ir.Type
}

// PlanSpecialization inspects a declaration's type parameters and decides
// the emission strategy.
func (r *Resolver) PlanSpecialization(declName string, params []ir.TypeParam) SpecializationPlan {
	plan := SpecializationPlan{Parametric: true}
	for _, tp := range params {
		if tp.Default == nil {
			continue
		}
		if tp.Default.Kind == ir.TypeStructural {
			// A structural default cannot be expressed as a target generic
			// default; close it into a companion type.
			plan.Synthesized = append(plan.Synthesized, SynthesizedSpec{
				Name:    closedName(declName, tp.Name),
				Param:   tp.Name,
				Default: tp.Default,
			})
		}
	}
	return plan
}

// closedName derives the deterministic companion name.
func closedName(declName, param string) string {
	return PascalSegment(declName) + "_" + strings.ToUpper(param[:1]) + param[1:] + "Default"
}

// TypeParamSet builds the scope set type rendering needs.
func TypeParamSet(params []ir.TypeParam) map[string]bool {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]bool, len(params))
	for _, tp := range params {
		out[tp.Name] = true
	}
	return out
}

// TypeParamsText renders a declaration's generic parameter list, e.g.
// "<T, U>", empty for non-generic declarations. Constraints render as
// target where-clauses through TypeParamConstraints.
func (r *Resolver) TypeParamsText(params []ir.TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, 0, len(params))
	for _, tp := range params {
		names = append(names, Ident(tp.Name))
	}
	return "<" + strings.Join(names, ", ") + ">"
}

// TypeParamConstraints renders where-clauses for constrained parameters.
// Unconstrained parameters contribute nothing.
func (r *Resolver) TypeParamConstraints(params []ir.TypeParam, ctx TypeCtx) (string, error) {
	var clauses []string
	for _, tp := range params {
		if tp.Constraint == nil {
			continue
		}
		text, err := r.TypeText(tp.Constraint, ctx)
		if err != nil {
			return "", err
		}
		if text == "object" {
			// 'extends object' narrows nothing the target can check.
			continue
		}
		clauses = append(clauses, "where "+Ident(tp.Name)+" : "+text)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " " + strings.Join(clauses, " "), nil
}
