package authz

// Capability is a named fine-grained permission.
type Capability string

const (
	CapUserManage     Capability = "user.manage"
	CapProductCreate  Capability = "product.create"
	CapProductSubmit  Capability = "product.submit"
	CapProductApprove Capability = "product.approve"
	CapProductPublish Capability = "product.publish"
	CapOrderViewAll   Capability = "order.view.all"
	CapOrderViewOwn   Capability = "order.view.own"
	CapReviewModerate Capability = "review.moderate"
	CapSettingsManage Capability = "settings.manage"
	CapReportsView    Capability = "reports.view"
)
