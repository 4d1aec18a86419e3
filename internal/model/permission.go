package model

// Permission represents a string capability code for a specific action.
type Permission string

const (
	// PermissionTestsRead allows viewing placement tests and their results.
	PermissionTestsRead Permission = "tests:read"

	// PermissionTestsWrite allows creating and editing placement tests,
	// their questions, pages and module assignments.
	PermissionTestsWrite Permission = "tests:write"

	// PermissionTestsPublish allows publishing, unpublishing, archiving and
	// restoring placement tests.
	PermissionTestsPublish Permission = "tests:publish"

	// PermissionTestsAdmin lifts the own-tests restriction: holders can
	// view and manage every author's tests.
	PermissionTestsAdmin Permission = "tests:admin"

	// PermissionModulesRead allows viewing the course module catalog.
	PermissionModulesRead Permission = "modules:read"

	// PermissionModulesWrite allows editing the course module catalog.
	PermissionModulesWrite Permission = "modules:write"

	// PermissionLearnersRead allows viewing learner accounts.
	PermissionLearnersRead Permission = "learners:read"

	// PermissionLearnersWrite allows creating and updating learner accounts.
	PermissionLearnersWrite Permission = "learners:write"

	// PermissionResultsRead allows viewing stored placement results.
	PermissionResultsRead Permission = "results:read"

	// PermissionMonitorStream allows streaming live attempt progress.
	PermissionMonitorStream Permission = "monitor:stream"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionTestsRead,
	PermissionTestsWrite,
	PermissionTestsPublish,
	PermissionTestsAdmin,
	PermissionModulesRead,
	PermissionModulesWrite,
	PermissionLearnersRead,
	PermissionLearnersWrite,
	PermissionResultsRead,
	PermissionMonitorStream,
}
