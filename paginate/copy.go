package paginate

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// The planner never mutates its input query. Every emitted sub-query is a
// structurally independent copy of the original document, deep enough that
// adding fields and directives to the copy cannot alias the original.
// Schema references (type and field definitions, source positions) stay
// shared: they are immutable.

func copyDocument(doc *ast.QueryDocument) *ast.QueryDocument {
	cp := *doc
	cp.Operations = make(ast.OperationList, len(doc.Operations))
	for i, op := range doc.Operations {
		cp.Operations[i] = copyOperation(op)
	}
	cp.Fragments = make(ast.FragmentDefinitionList, len(doc.Fragments))
	for i, frag := range doc.Fragments {
		cp.Fragments[i] = copyFragment(frag)
	}
	return &cp
}

func copyOperation(op *ast.OperationDefinition) *ast.OperationDefinition {
	cp := *op
	cp.VariableDefinitions = make(ast.VariableDefinitionList, len(op.VariableDefinitions))
	for i, v := range op.VariableDefinitions {
		vcp := *v
		cp.VariableDefinitions[i] = &vcp
	}
	cp.Directives = copyDirectives(op.Directives)
	cp.SelectionSet = copySelectionSet(op.SelectionSet)
	return &cp
}

func copyFragment(frag *ast.FragmentDefinition) *ast.FragmentDefinition {
	cp := *frag
	cp.Directives = copyDirectives(frag.Directives)
	cp.SelectionSet = copySelectionSet(frag.SelectionSet)
	return &cp
}

func copySelectionSet(set ast.SelectionSet) ast.SelectionSet {
	if set == nil {
		return nil
	}
	cp := make(ast.SelectionSet, len(set))
	for i, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			cp[i] = copyField(s)
		case *ast.FragmentSpread:
			scp := *s
			scp.Directives = copyDirectives(s.Directives)
			cp[i] = &scp
		case *ast.InlineFragment:
			scp := *s
			scp.Directives = copyDirectives(s.Directives)
			scp.SelectionSet = copySelectionSet(s.SelectionSet)
			cp[i] = &scp
		default:
			cp[i] = sel
		}
	}
	return cp
}

func copyField(f *ast.Field) *ast.Field {
	cp := *f
	cp.Arguments = copyArguments(f.Arguments)
	cp.Directives = copyDirectives(f.Directives)
	cp.SelectionSet = copySelectionSet(f.SelectionSet)
	return &cp
}

func copyDirectives(ds ast.DirectiveList) ast.DirectiveList {
	if ds == nil {
		return nil
	}
	cp := make(ast.DirectiveList, len(ds))
	for i, d := range ds {
		dcp := *d
		dcp.Arguments = copyArguments(d.Arguments)
		cp[i] = &dcp
	}
	return cp
}

func copyArguments(args ast.ArgumentList) ast.ArgumentList {
	if args == nil {
		return nil
	}
	cp := make(ast.ArgumentList, len(args))
	for i, a := range args {
		acp := *a
		acp.Value = copyValue(a.Value)
		cp[i] = &acp
	}
	return cp
}

func copyValue(v *ast.Value) *ast.Value {
	if v == nil {
		return nil
	}
	cp := *v
	if v.Children != nil {
		cp.Children = make(ast.ChildValueList, len(v.Children))
		for i, c := range v.Children {
			ccp := *c
			ccp.Value = copyValue(c.Value)
			cp.Children[i] = &ccp
		}
	}
	return &cp
}
