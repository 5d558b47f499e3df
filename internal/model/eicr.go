package model

// InspectionItem is one row of the EICR's fixed 66-item inspection
// checklist (BS 7671:2018+A3:2024 numbering and clause references).
type InspectionItem struct {
	ID         string `json:"id"`
	ItemNumber string `json:"itemNumber"`
	Item       string `json:"item"`
	Clause     string `json:"clause"`
	Outcome    string `json:"outcome"`
	Notes      string `json:"notes"`
}

// Observation is a recorded defect or general observation with its
// classification code (C1, C2, C3, FI) and remedial recommendation.
type Observation struct {
	ID             string `json:"id"`
	Item           string `json:"item"`
	DefectCode     string `json:"defectCode"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
	Regulation     string `json:"regulation"`
	Rectified      bool   `json:"rectified"`
}

// EICRTestResult is one circuit row on an EICR schedule of tests. Ring
// continuity is recorded as three distinct readings (r1, rn, r2) rather
// than the EIC's aggregate figure.
type EICRTestResult struct {
	ID                       string `json:"id"`
	CircuitNumber            string `json:"circuitNumber"`
	CircuitDesignation       string `json:"circuitDesignation"`
	CircuitDescription       string `json:"circuitDescription"`
	ReferenceMethod          string `json:"referenceMethod"`
	LiveSize                 string `json:"liveSize"`
	CpcSize                  string `json:"cpcSize"`
	ProtectiveDeviceType     string `json:"protectiveDeviceType"`
	ProtectiveDeviceRating   string `json:"protectiveDeviceRating"`
	ProtectiveDeviceKaRating string `json:"protectiveDeviceKaRating"`
	BSStandard               string `json:"bsStandard"`
	TypeOfWiring             string `json:"typeOfWiring"`
	R1R2                     string `json:"r1r2"`
	R2                       string `json:"r2"`
	RingR1                   string `json:"ringR1"`
	RingRn                   string `json:"ringRn"`
	RingR2                   string `json:"ringR2"`
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

// EICRDocument is the in-memory form document for an Electrical
// Installation Condition Report. All string fields are always defined;
// a transform from an EIC leaves assessment and checklist state empty.
type EICRDocument struct {
	CertificateNumber string `json:"certificateNumber"`

	// Client
	ClientName    string `json:"clientName"`
	ClientAddress string `json:"clientAddress"`
	ClientPhone   string `json:"clientPhone"`
	ClientEmail   string `json:"clientEmail"`

	// Installation / premises
	InstallationAddress   string `json:"installationAddress"`
	Description           string `json:"description"`
	EstimatedAge          string `json:"estimatedAge"`
	AgeUnit               string `json:"ageUnit"`
	EvidenceOfAlterations string `json:"evidenceOfAlterations"`
	DateOfLastInspection  string `json:"dateOfLastInspection"`

	// Purpose and extent
	PurposeOfInspection     string `json:"purposeOfInspection"`
	InspectionDate          string `json:"inspectionDate"`
	InspectionInterval      string `json:"inspectionInterval"`
	NextInspectionDate      string `json:"nextInspectionDate"`
	ExtentOfInspection      string `json:"extentOfInspection"`
	LimitationsOfInspection string `json:"limitationsOfInspection"`

	// Supply characteristics
	EarthingArrangement  string `json:"earthingArrangement"`
	DNOName              string `json:"dnoName"`
	MPAN                 string `json:"mpan"`
	CutoutLocation       string `json:"cutoutLocation"`
	ServiceEntry         string `json:"serviceEntry"`
	SupplyVoltage        string `json:"supplyVoltage"`
	SupplyFrequency      string `json:"supplyFrequency"`
	Phases               string `json:"phases"`
	SupplyType           string `json:"supplyType"`
	SupplyPME            string `json:"supplyPME"`
	MainProtectiveDevice string `json:"mainProtectiveDevice"`
	MainSwitchRating     string `json:"mainSwitchRating"`
	RCDMainSwitch        string `json:"rcdMainSwitch"`
	RCDRating            string `json:"rcdRating"`

	// Earthing and bonding
	EarthElectrodeType        string `json:"earthElectrodeType"`
	EarthElectrodeResistance  string `json:"earthElectrodeResistance"`
	MainEarthingConductorSize string `json:"mainEarthingConductorSize"`
	MainBondingSize           string `json:"mainBondingSize"`
	SupplementaryBondingSize  string `json:"supplementaryBondingSize"`
	BondingCompliance         string `json:"bondingCompliance"`
	EquipotentialBonding      string `json:"equipotentialBonding"`

	// Distribution board
	BoardSize     string `json:"boardSize"`
	BoardType     string `json:"boardType"`
	BoardLocation string `json:"boardLocation"`

	// Cables
	IntakeCableSize string `json:"intakeCableSize"`
	IntakeCableType string `json:"intakeCableType"`
	TailsSize       string `json:"tailsSize"`
	TailsLength     string `json:"tailsLength"`

	// Inspector and registration. A condition report carries a fresh
	// inspection, so these never come from the source document.
	InspectorName           string `json:"inspectorName"`
	InspectorQualifications string `json:"inspectorQualifications"`
	InspectorSignature      string `json:"inspectorSignature"`
	InspectorDate           string `json:"inspectorDate"`
	RegistrationScheme      string `json:"registrationScheme"`
	RegistrationNumber      string `json:"registrationNumber"`
	CompanyName             string `json:"companyName"`
	CompanyAddress          string `json:"companyAddress"`
	CompanyPhone            string `json:"companyPhone"`
	CompanyEmail            string `json:"companyEmail"`

	// Test instrument
	TestInstrumentMake   string `json:"testInstrumentMake"`
	TestInstrumentSerial string `json:"testInstrumentSerial"`
	CalibrationDate      string `json:"calibrationDate"`

	// Assessment. Always unset after a transform.
	OverallAssessment           string `json:"overallAssessment"`
	SatisfactoryForContinuedUse string `json:"satisfactoryForContinuedUse"`
	AdditionalComments          string `json:"additionalComments"`

	InspectionItems     []InspectionItem `json:"inspectionItems"`
	DefectObservations  []Observation    `json:"defectObservations"`
	GeneralObservations []Observation    `json:"generalObservations"`
	ScheduleOfTests     []EICRTestResult `json:"scheduleOfTests"`
}
