package parser

import (
	"fmt"

	"github.com/chinanuke/bwcc/internal/token"
)

// ScopeStack is the parser-owned LIFO of per-block name->kind bindings.
// true means the name is bound as a typedef name in that scope, false
// means it is bound as an ordinary identifier; a name absent from a
// scope is not bound there at all.
//
// ScopeStack implements lexer.ScopeResolver so the lexer can be handed
// the stack directly as an object-safe interface rather than through
// package-level globals.
type ScopeStack struct {
	scopes []map[string]bool
}

// NewScopeStack creates a scope stack with one (global) scope.
func NewScopeStack() *ScopeStack {
	return &ScopeStack{scopes: []map[string]bool{make(map[string]bool)}}
}

// OnLBrace implements lexer.ScopeResolver.
func (s *ScopeStack) OnLBrace() { s.Push() }

// OnRBrace implements lexer.ScopeResolver.
func (s *ScopeStack) OnRBrace() { s.Pop() }

// Push opens a new, empty scope.
func (s *ScopeStack) Push() {
	s.scopes = append(s.scopes, make(map[string]bool))
}

// Pop closes the innermost scope. The global scope (index 0) is never
// popped.
func (s *ScopeStack) Pop() {
	if len(s.scopes) > 1 {
		s.scopes = s.scopes[:len(s.scopes)-1]
	}
}

// AddTypedefName binds name as a typedef name in the current scope.
// Redeclaring name as the opposite kind in the same scope is a parse
// error.
func (s *ScopeStack) AddTypedefName(name string, pos token.Position) error {
	cur := s.scopes[len(s.scopes)-1]
	if isType, ok := cur[name]; ok && !isType {
		return fmt.Errorf("%s: %q is already declared as an identifier in this scope, cannot redeclare as a type", pos, name)
	}
	cur[name] = true
	return nil
}

// AddIdentifier binds name as an ordinary identifier in the current scope.
func (s *ScopeStack) AddIdentifier(name string, pos token.Position) error {
	cur := s.scopes[len(s.scopes)-1]
	if isType, ok := cur[name]; ok && isType {
		return fmt.Errorf("%s: %q is already declared as a type in this scope, cannot redeclare as an identifier", pos, name)
	}
	cur[name] = false
	return nil
}

// IsTypeName answers the lexer's typeid query: scan innermost scope
// outward and return the first binding found, or false if name is unbound
// anywhere.
func (s *ScopeStack) IsTypeName(name string) bool {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if isType, ok := s.scopes[i][name]; ok {
			return isType
		}
	}
	return false
}
