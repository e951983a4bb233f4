package feasibility

// Provider tool names the service fans out to.
const (
	ToolWeather     = "get_weather_conditions"
	ToolTerrain     = "get_terrain_analysis"
	ToolThreat      = "check_threat_assessment"
	ToolReadiness   = "check_unit_readiness"
	ToolVehicle     = "check_vehicle_status"
	ToolComms       = "check_comms_status"
	ToolSupply      = "check_supply_inventory"
	ToolSustainment = "calculate_sustainment"
)
