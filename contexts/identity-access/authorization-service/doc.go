// Package authorizationservice decides, for every resource and actor, whether
// an operation is permitted. The same decision procedure serves organizations
// and applications: both carry a three-tier visibility level and an ordered
// role hierarchy, so the engine is written once over a role ordering plus a
// resource-kind descriptor instead of being duplicated per kind.
//
// Decisions distinguish Forbidden from NotFound on purpose: existence of a
// resource is revealed only to actors that could already see it.
package authorizationservice
