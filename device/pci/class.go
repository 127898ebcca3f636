package pci

import "bootprobe/kernel"

var errUnknownClass = &kernel.Error{Module: "pci", Message: "unknown PCI class code"}

// DeviceClass describes the semantic category of a PCI function.
type DeviceClass uint8

// The list of PCI class codes known to the decoder.
const (
	ClassUnclassified DeviceClass = iota
	ClassMassStorage
	ClassNetwork
	ClassDisplay
	ClassMultimedia
	ClassMemory
	ClassBridgeDevice
	ClassSimple
	ClassBasePeripheral
	ClassInputDevice
	ClassDock
	ClassProcessor
	ClassSerialBus
	ClassWireless
	ClassIntelligentController
	ClassSatellite
	ClassEncryption
	ClassSignalProcessing
	ClassProcessingAccelerator
	ClassNonEssential
	ClassCoProcessor DeviceClass = 0x40
	ClassUnassigned  DeviceClass = 0xff
)

var classNames = [...]string{
	ClassUnclassified:          "Unclassified",
	ClassMassStorage:           "MassStorage",
	ClassNetwork:               "Network",
	ClassDisplay:               "Display",
	ClassMultimedia:            "Multimedia",
	ClassMemory:                "Memory",
	ClassBridgeDevice:          "BridgeDevice",
	ClassSimple:                "Simple",
	ClassBasePeripheral:        "BasePeripheral",
	ClassInputDevice:           "InputDevice",
	ClassDock:                  "Dock",
	ClassProcessor:             "Processor",
	ClassSerialBus:             "SerialBus",
	ClassWireless:              "Wireless",
	ClassIntelligentController: "IntelligentController",
	ClassSatellite:             "Satellite",
	ClassEncryption:            "Encryption",
	ClassSignalProcessing:      "SignalProcessing",
	ClassProcessingAccelerator: "ProcessingAccelerator",
	ClassNonEssential:          "NonEssential",
}

// DecodeClass maps a raw class code byte to a DeviceClass. It returns
// errUnknownClass for codes outside the PCI class table.
func DecodeClass(code uint8) (DeviceClass, *kernel.Error) {
	switch c := DeviceClass(code); {
	case int(c) < len(classNames), c == ClassCoProcessor, c == ClassUnassigned:
		return c, nil
	default:
		return c, errUnknownClass
	}
}

// String returns the name of the class. Codes outside the PCI class table
// are rendered as "Unknown".
func (c DeviceClass) String() string {
	switch {
	case int(c) < len(classNames):
		return classNames[c]
	case c == ClassCoProcessor:
		return "CoProcessor"
	case c == ClassUnassigned:
		return "Unassigned"
	default:
		return "Unknown"
	}
}

// Sub-class and programming interface codes used for refining the rendered
// class name.
const (
	subclassIDE  = 0x01
	subclassSATA = 0x06
	subclassNVMe = 0x08
	subclassUSB  = 0x03

	progIFUHCI = 0x00
	progIFOHCI = 0x10
	progIFEHCI = 0x20
	progIFXHCI = 0x30
)

// refinement returns a short description of well-known subclass/interface
// combinations of class c or an empty string.
func refinement(c DeviceClass, subclass, progIF uint8) string {
	switch c {
	case ClassMassStorage:
		switch subclass {
		case subclassIDE:
			return "IDE"
		case subclassSATA:
			return "SATA"
		case subclassNVMe:
			return "NVMe"
		}
	case ClassSerialBus:
		if subclass != subclassUSB {
			return ""
		}

		switch progIF {
		case progIFUHCI:
			return "UHCI"
		case progIFOHCI:
			return "OHCI"
		case progIFEHCI:
			return "EHCI"
		case progIFXHCI:
			return "XHCI"
		}
	}

	return ""
}
