package policy

// DefaultRuleset is the per-endpoint policy table. Each entry pairs a group
// allow-set (OR over groups) with a permission tree. Ownership predicates
// appear only on retrieve/update/delete, where the object is resolved.
var DefaultRuleset = Ruleset{
	ResourceUsers: {
		ActionList: {
			Groups:      []Group{GroupAdmin},
			Permissions: IsAuthenticated,
		},
		ActionRetrieve: {
			Groups:      []Group{GroupAll},
			Permissions: All(IsAuthenticated, Any(IsSelf, IsAdmin)),
		},
		ActionUpdate: {
			Groups:      []Group{GroupAll},
			Permissions: All(IsAuthenticated, Any(IsSelf, IsAdmin)),
		},
		ActionDelete: {
			Groups:      []Group{GroupAll},
			Permissions: All(IsAuthenticated, Any(IsSelf, IsAdmin)),
		},
		// No create rule: registration is the only way to mint a user.
	},
	ResourceCategories: {
		ActionList: {
			Groups:      []Group{GroupAdmin},
			Permissions: IsAuthenticated,
		},
		ActionRetrieve: {
			Groups:      []Group{GroupAdmin, GroupOrganizer},
			Permissions: All(IsAuthenticated, Any(IsCategoryOwner, IsAdmin)),
		},
		ActionCreate: {
			Groups:      []Group{GroupAdmin, GroupOrganizer},
			Permissions: IsAuthenticated,
		},
		ActionUpdate: {
			Groups:      []Group{GroupAdmin, GroupOrganizer},
			Permissions: All(IsAuthenticated, Any(IsCategoryOwner, IsAdmin)),
		},
		ActionDelete: {
			Groups:      []Group{GroupAdmin, GroupOrganizer},
			Permissions: All(IsAuthenticated, Any(IsCategoryOwner, IsAdmin)),
		},
	},
	ResourceSponsors: {
		ActionList: {
			Groups:      []Group{GroupAdmin},
			Permissions: IsAuthenticated,
		},
		ActionRetrieve: {
			Groups:      []Group{GroupAdmin, GroupOrganizer},
			Permissions: All(IsAuthenticated, Any(IsSponsorOwner, IsAdmin)),
		},
		ActionCreate: {
			Groups:      []Group{GroupAdmin, GroupOrganizer},
			Permissions: IsAuthenticated,
		},
		ActionUpdate: {
			Groups:      []Group{GroupAdmin, GroupOrganizer},
			Permissions: All(IsAuthenticated, Any(IsSponsorOwner, IsAdmin)),
		},
		ActionDelete: {
			Groups:      []Group{GroupAdmin, GroupOrganizer},
			Permissions: All(IsAuthenticated, Any(IsSponsorOwner, IsAdmin)),
		},
	},
	ResourceMarathons: {
		ActionList: {
			Groups:      []Group{GroupAdmin, GroupOrganizer, GroupClient},
			Permissions: IsAuthenticated,
		},
		ActionRetrieve: {
			Groups:      []Group{GroupAdmin, GroupOrganizer, GroupClient},
			Permissions: IsAuthenticated,
		},
		ActionCreate: {
			Groups:      []Group{GroupAdmin, GroupOrganizer},
			Permissions: IsAuthenticated,
		},
		ActionUpdate: {
			Groups:      []Group{GroupAdmin, GroupOrganizer},
			Permissions: All(IsAuthenticated, Any(IsMarathonOwner, IsAdmin)),
		},
		ActionDelete: {
			Groups:      []Group{GroupAdmin, GroupOrganizer},
			Permissions: All(IsAuthenticated, Any(IsMarathonOwner, IsAdmin)),
		},
	},
	ResourcePayments: {
		ActionList: {
			Groups:      []Group{GroupAdmin, GroupOrganizer, GroupClient},
			Permissions: IsAuthenticated,
		},
		ActionRetrieve: {
			Groups:      []Group{GroupAdmin, GroupOrganizer, GroupClient},
			Permissions: All(IsAuthenticated, Any(IsPaymentOwner, IsAdmin)),
		},
		ActionCreate: {
			Groups:      []Group{GroupAdmin, GroupClient},
			Permissions: IsAuthenticated,
		},
		ActionUpdate: {
			Groups:      []Group{GroupAdmin},
			Permissions: IsAuthenticated,
		},
		ActionDelete: {
			Groups:      []Group{GroupAdmin, GroupClient},
			Permissions: All(IsAuthenticated, Any(IsPaymentOwner, IsAdmin)),
		},
	},
}
