package service

import "courseportal/internal/model"

// Operation names a guarded unit or file operation.
type Operation string

const (
	OpCreateUnit  Operation = "create_unit"
	OpDeleteUnit  Operation = "delete_unit"
	OpListUnits   Operation = "list_units"
	OpUpload      Operation = "upload"
	OpPublishUnit Operation = "publish_unit"
	OpPublishFile Operation = "publish_file"
	OpDeleteFile  Operation = "delete_file"
	OpDownload    Operation = "download"
	OpPreview     Operation = "preview"
	OpLink        Operation = "link"
)

// Policy describes who may run an operation.
//
// Role is required of the caller; empty allows any signed-in role.
// RequireOwner demands that the resource's teacher is the caller.
// PublishedForStudents lets students through when the file is published, in place of the owner check.
// RevealExistence selects the denial error: ErrUnauthorized when true, ErrNotFound when false,
// so retrieval never confirms that a file the caller cannot see exists.
type Policy struct {
	Role                 model.Role
	RequireOwner         bool
	PublishedForStudents bool
	RevealExistence      bool
}

var retrievalPolicy = Policy{RequireOwner: true, PublishedForStudents: true}

// DefaultPolicies is the access table applied to every guarded operation.
var DefaultPolicies = map[Operation]Policy{
	OpCreateUnit:  {Role: model.RoleTeacher, RevealExistence: true},
	OpListUnits:   {Role: model.RoleTeacher, RevealExistence: true},
	OpDeleteUnit:  {Role: model.RoleTeacher, RequireOwner: true, RevealExistence: true},
	OpUpload:      {Role: model.RoleTeacher, RequireOwner: true, RevealExistence: true},
	OpPublishUnit: {Role: model.RoleTeacher, RequireOwner: true, RevealExistence: true},
	OpPublishFile: {Role: model.RoleTeacher, RequireOwner: true, RevealExistence: true},
	OpDeleteFile:  {Role: model.RoleTeacher, RequireOwner: true, RevealExistence: true},
	OpDownload:    retrievalPolicy,
	OpPreview:     retrievalPolicy,
	OpLink:        retrievalPolicy,
}

// Guard answers whether a session may run an operation on a resource.
// Every denial cause (no session, wrong role, not the owner, missing resource)
// yields the same error for a given operation.
type Guard struct {
	policies map[Operation]Policy
}

func NewGuard(policies map[Operation]Policy) *Guard {
	if policies == nil {
		policies = DefaultPolicies
	}
	return &Guard{policies: policies}
}

// Policy returns the policy for op. Unknown operations get a deny-all teacher policy.
func (g *Guard) Policy(op Operation) Policy {
	if p, ok := g.policies[op]; ok {
		return p
	}
	return Policy{Role: model.RoleTeacher, RequireOwner: true, RevealExistence: true}
}

// Denial returns the error op reports for any refusal.
func (g *Guard) Denial(op Operation) error {
	if g.Policy(op).RevealExistence {
		return ErrUnauthorized
	}
	return ErrNotFound
}

// Allow checks the session and role only.
func (g *Guard) Allow(sess *model.Session, op Operation) error {
	p := g.Policy(op)
	if sess == nil || sess.AccountID == "" {
		return g.Denial(op)
	}
	if p.Role != "" && sess.Role != p.Role {
		return g.Denial(op)
	}
	return nil
}

// AuthorizeUnit checks the session against unit. A nil unit means it does not exist.
func (g *Guard) AuthorizeUnit(sess *model.Session, op Operation, unit *model.Unit) error {
	if err := g.Allow(sess, op); err != nil {
		return err
	}
	if unit == nil {
		return g.Denial(op)
	}
	if g.Policy(op).RequireOwner && unit.TeacherID != sess.AccountID {
		return g.Denial(op)
	}
	return nil
}

// AuthorizeFile checks the session against file. A nil file means it does not exist.
func (g *Guard) AuthorizeFile(sess *model.Session, op Operation, file *model.File) error {
	if err := g.Allow(sess, op); err != nil {
		return err
	}
	if file == nil {
		return g.Denial(op)
	}
	p := g.Policy(op)
	switch {
	case p.PublishedForStudents && sess.Role == model.RoleStudent:
		if !file.IsPublished {
			return g.Denial(op)
		}
	case p.RequireOwner:
		if file.TeacherID != sess.AccountID {
			return g.Denial(op)
		}
	}
	return nil
}
