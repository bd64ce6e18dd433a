package domain

// DeploymentPhase mirrors the lifecycle of a hosted endpoint
type DeploymentPhase string

const (
	PhaseCreating  DeploymentPhase = "Creating"
	PhaseInService DeploymentPhase = "InService"
	PhaseFailed    DeploymentPhase = "Failed"
)

// IsTerminal reports whether polling can stop
func (p DeploymentPhase) IsTerminal() bool {
	return p == PhaseInService || p == PhaseFailed
}

// Deployment describes a serving endpoint running this server's image
type Deployment struct {
	Name      string
	Namespace string
	Image     string
	ModelURI  string
	Env       map[string]string
	Labels    map[string]string
}

// Validate checks required fields
func (d *Deployment) Validate() error {
	if d.Name == "" {
		return ErrInvalidDeploymentName
	}
	if d.Image == "" {
		return ErrInvalidDeploymentImage
	}
	if d.ModelURI == "" {
		return ErrInvalidDeploymentModelURI
	}
	return nil
}

// DeploymentStatus is the observed state of an endpoint
type DeploymentStatus struct {
	Name    string
	Phase   DeploymentPhase
	URL     string
	Message string
}
