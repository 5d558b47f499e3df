package model

// EICTestResult is one circuit row on an EIC schedule of testing.
// Ring continuity is recorded as the aggregate r1+r2 figure plus the
// live and neutral ring readings.
type EICTestResult struct {
	ID                       string `json:"id,omitempty"`
	CircuitNumber            string `json:"circuitNumber"`
	CircuitDescription       string `json:"circuitDescription"`
	ReferenceMethod          string `json:"referenceMethod"`
	LiveSize                 string `json:"liveSize"`
	CpcSize                  string `json:"cpcSize"`
	ProtectiveDevice         string `json:"protectiveDevice"`
	ProtectiveDeviceRating   string `json:"protectiveDeviceRating"`
	ProtectiveDeviceKaRating string `json:"protectiveDeviceKaRating"`
	BSStandard               string `json:"bsStandard"`
	TypeOfWiring             string `json:"typeOfWiring"`
	R1R2                     string `json:"r1r2"`
	R2                       string `json:"r2"`
	RingContinuityLive       string `json:"ringContinuityLive"`
	RingContinuityNeutral    string `json:"ringContinuityNeutral"`
	InsulationTestVoltage    string `json:"insulationTestVoltage"`
	InsulationLiveNeutral    string `json:"insulationLiveNeutral"`
	InsulationLiveEarth      string `json:"insulationLiveEarth"`
	InsulationNeutralEarth   string `json:"insulationNeutralEarth"`
	Polarity                 string `json:"polarity"`
	Zs                       string `json:"zs"`
	MaxZs                    string `json:"maxZs"`
	PointsServed             string `json:"pointsServed"`
	RCDBSStandard            string `json:"rcdBsStandard"`
	RCDType                  string `json:"rcdType"`
	RCDRating                string `json:"rcdRating"`
	RCDOneX                  string `json:"rcdOneX"`
	RCDTestButton            string `json:"rcdTestButton"`
	AFDDTest                 string `json:"afddTest"`
	PFCLiveNeutral           string `json:"pfcLiveNeutral"`
	PFCLiveEarth             string `json:"pfcLiveEarth"`
	FunctionalTesting        string `json:"functionalTesting"`
	Notes                    string `json:"notes"`
}

// EICDocument is the in-memory form document for an Electrical
// Installation Certificate. Every field is optional; absent values are
// empty strings.
type EICDocument struct {
	CertificateNumber string `json:"certificateNumber"`

	// Client
	ClientName    string `json:"clientName"`
	ClientAddress string `json:"clientAddress"`
	ClientPhone   string `json:"clientPhone"`
	ClientEmail   string `json:"clientEmail"`

	// Installation
	InstallationAddress string `json:"installationAddress"`
	InstallationDate    string `json:"installationDate"`
	InstallationType    string `json:"installationType"`
	Description         string `json:"description"`
	DesignStandard      string `json:"designStandard"`

	// Supply characteristics
	SupplyVoltage        string `json:"supplyVoltage"`
	SupplyFrequency      string `json:"supplyFrequency"`
	Phases               string `json:"phases"`
	EarthingArrangement  string `json:"earthingArrangement"`
	SupplyType           string `json:"supplyType"`
	SupplyPME            string `json:"supplyPME"`
	MainProtectiveDevice string `json:"mainProtectiveDevice"`
	MainSwitchRating     string `json:"mainSwitchRating"`
	RCDMainSwitch        string `json:"rcdMainSwitch"`
	RCDRating            string `json:"rcdRating"`

	// Distribution board
	BoardSize     string `json:"boardSize"`
	BoardType     string `json:"boardType"`
	BoardLocation string `json:"boardLocation"`

	// Cables
	IntakeCableSize string `json:"intakeCableSize"`
	IntakeCableType string `json:"intakeCableType"`
	TailsSize       string `json:"tailsSize"`
	TailsLength     string `json:"tailsLength"`

	// Earthing and bonding
	EarthElectrodeType        string `json:"earthElectrodeType"`
	EarthElectrodeResistance  string `json:"earthElectrodeResistance"`
	MainEarthingConductorSize string `json:"mainEarthingConductorSize"`
	MainBondingSize           string `json:"mainBondingSize"`
	CustomMainBondingSize     string `json:"customMainBondingSize"`
	SupplementaryBondingSize  string `json:"supplementaryBondingSize"`
	BondingCompliance         string `json:"bondingCompliance"`
	EquipotentialBonding      string `json:"equipotentialBonding"`

	// Circuit test records, in document order.
	ScheduleOfTests []EICTestResult `json:"scheduleOfTests"`

	// EIC-specific inspection checklist, keyed by checklist item.
	// Never carried into an EICR.
	Inspections map[string]string `json:"inspections,omitempty"`

	// Declarations. Specific to the EIC and never carried forward.
	DesignerName              string `json:"designerName"`
	DesignerQualifications    string `json:"designerQualifications"`
	DesignerSignature         string `json:"designerSignature"`
	DesignerDate              string `json:"designerDate"`
	ConstructorName           string `json:"constructorName"`
	ConstructorQualifications string `json:"constructorQualifications"`
	ConstructorSignature      string `json:"constructorSignature"`
	ConstructorDate           string `json:"constructorDate"`
	InspectorName             string `json:"inspectorName"`
	InspectorQualifications   string `json:"inspectorQualifications"`
	InspectorSignature        string `json:"inspectorSignature"`
	InspectorDate             string `json:"inspectorDate"`
}
