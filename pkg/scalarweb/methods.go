package scalarweb

// Well-known service names. A device exposes each service as its own
// endpoint under the base URL.
const (
	ServiceGuide         = "guide"
	ServiceSystem        = "system"
	ServiceAccessControl = "accessControl"
	ServiceAVContent     = "avContent"
	ServiceAudio         = "audio"
	ServiceAppControl    = "appControl"
)

// Method names used by session negotiation and provisioning.
const (
	// MethodGetVersions lists the API versions a service supports.
	MethodGetVersions = "getVersions"

	// MethodGetMethodTypes lists the method signatures of one API version.
	MethodGetMethodTypes = "getMethodTypes"

	// MethodGetDeviceMode is the primary authorization probe. Most devices
	// guard it, making its error code a reliable access signal.
	MethodGetDeviceMode = "getDeviceMode"

	// MethodGetPowerStatus is the fallback authorization probe for devices
	// that do not implement getDeviceMode.
	MethodGetPowerStatus = "getPowerStatus"

	// MethodGetSystemInformation reports product, model and addressing data.
	MethodGetSystemInformation = "getSystemInformation"

	// MethodGetInterfaceInformation reports the device category and server name.
	MethodGetInterfaceInformation = "getInterfaceInformation"

	// MethodGetNetworkSettings reports the settings of one network interface.
	MethodGetNetworkSettings = "getNetworkSettings"

	// MethodGetRemoteControllerInfo lists the remote controller commands.
	MethodGetRemoteControllerInfo = "getRemoteControllerInfo"

	// MethodActRegister pairs a client with the device.
	MethodActRegister = "actRegister"
)
