package fakedevice

import (
	"encoding/xml"
	"fmt"
	"net/http"
)

// The IRCC descriptor chain: a device descriptor pointing at an action
// list, which points at the remote command list.

func (d *Device) handleIRCCDescriptor(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/xml")
	fmt.Fprintf(w, `<?xml version="1.0"?>
<root xmlns="urn:schemas-upnp-org:device-1-0" xmlns:av="urn:schemas-sony-com:av">
  <device>
    <friendlyName>%s</friendlyName>
    <av:X_CERS_ActionList_URL>%s/ircc/actionList.xml</av:X_CERS_ActionList_URL>
  </device>
</root>
`, d.SystemInfo.Name, d.server.URL)
}

func (d *Device) handleIRCCActionList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/xml")
	fmt.Fprintf(w, `<?xml version="1.0"?>
<actionList>
  <action name="register" url="%s/ircc/register"/>
  <action name="getRemoteCommandList" url="%s/ircc/commandList.xml"/>
</actionList>
`, d.server.URL, d.server.URL)
}

type xmlCommand struct {
	XMLName xml.Name `xml:"command"`
	Name    string   `xml:"name,attr"`
	Type    string   `xml:"type,attr"`
	Value   string   `xml:"value,attr"`
}

type xmlCommandList struct {
	XMLName  xml.Name     `xml:"remoteCommandList"`
	Commands []xmlCommand `xml:"command"`
}

func (d *Device) handleIRCCCommandList(w http.ResponseWriter, r *http.Request) {
	list := xmlCommandList{}
	for _, cmd := range d.IRCCCommands {
		list.Commands = append(list.Commands, xmlCommand{
			Name:  cmd.Name,
			Type:  "ircc",
			Value: cmd.Value,
		})
	}

	data, err := xml.Marshal(list)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/xml")
	w.Write([]byte(xml.Header))
	w.Write(data)
}
