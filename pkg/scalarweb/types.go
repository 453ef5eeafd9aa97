package scalarweb

// NotAvailable is the placeholder some firmware versions report instead of
// a real value. Fields carrying it are treated as absent.
const NotAvailable = "NA"

// SystemInformation is the payload of getSystemInformation.
type SystemInformation struct {
	Product    string `json:"product"`
	Name       string `json:"name"`
	Model      string `json:"model"`
	Generation string `json:"generation"`
	Serial     string `json:"serial"`
	MACAddr    string `json:"macAddr"`
	Area       string `json:"area"`
	Region     string `json:"region"`
}

// ModelValid returns true if the model field carries a usable value.
func (s *SystemInformation) ModelValid() bool {
	return s.Model != "" && s.Model != NotAvailable
}

// InterfaceInformation is the payload of getInterfaceInformation.
type InterfaceInformation struct {
	InterfaceVersion string `json:"interfaceVersion"`
	ModelName        string `json:"modelName"`
	ProductCategory  string `json:"productCategory"`
	ProductName      string `json:"productName"`
	ServerName       string `json:"serverName"`
}

// NetworkSettings is the payload of getNetworkSettings for one interface.
type NetworkSettings struct {
	NetIf    string   `json:"netif"`
	HWAddr   string   `json:"hwAddr"`
	IPAddrV4 string   `json:"ipAddrV4"`
	IPAddrV6 string   `json:"ipAddrV6"`
	Netmask  string   `json:"netmask"`
	Gateway  string   `json:"gateway"`
	DNS      []string `json:"dns"`
}

// NetIfParam is the request parameter of getNetworkSettings.
type NetIfParam struct {
	NetIf string `json:"netif"`
}

// RemoteCommand is one entry of the command list returned by
// getRemoteControllerInfo.
type RemoteCommand struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RemoteControllerInfo is the first payload element of
// getRemoteControllerInfo; the command list follows as the second element.
type RemoteControllerInfo struct {
	Bundled bool   `json:"bundled"`
	Type    string `json:"type"`
}

// RegisterClient is the first parameter of actRegister, identifying the
// client requesting access.
type RegisterClient struct {
	ClientID string `json:"clientid"`
	Nickname string `json:"nickname"`
	Level    string `json:"level"`
}

// RegisterFunction is an entry of the second actRegister parameter, opting
// the client in to a device function.
type RegisterFunction struct {
	Value    string `json:"value"`
	Function string `json:"function"`
}

// RegisterLevelPrivate is the access level requested during pairing.
const RegisterLevelPrivate = "private"

// FunctionWOL is the wake-on-LAN function flag sent with actRegister.
const FunctionWOL = "WOL"
